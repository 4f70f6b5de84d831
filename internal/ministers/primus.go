// Package ministers holds the four cabinet stage handlers that the
// cognitive dispatcher runs requests through.
package ministers

import (
	"context"
	"strings"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/cognitive"
)

// Primus performs strategic analysis of the parsed request: intent,
// complexity, and which tags are present to guide the later stages.
type Primus struct{}

func NewPrimus() *Primus { return &Primus{} }

func (p *Primus) Minister() asl.Minister { return asl.MinisterPrimus }

func (p *Primus) Process(_ context.Context, pc *cognitive.Context) (map[string]any, error) {
	intent := ""
	var present []string
	if pc.Parsed != nil {
		intent = pc.Parsed.Tags[asl.TagIntent]
		for tag := range pc.Parsed.Tags {
			present = append(present, string(tag))
		}
	}
	if intent == "" {
		intent = "general_inquiry"
	}

	return map[string]any{
		"intent":       intent,
		"tags_present": present,
		"complexity":   complexityOf(pc.UserInput),
		"routing":      routingOf(pc.Parsed),
	}, nil
}

func complexityOf(input string) string {
	words := len(strings.Fields(input))
	switch {
	case words > 50:
		return "high"
	case words > 15:
		return "medium"
	}
	return "low"
}

func routingOf(parsed *asl.ParseResult) string {
	if parsed == nil || parsed.Routing == "" {
		return string(asl.MinisterPrimus)
	}
	return string(parsed.Routing)
}
