package ministers

import (
	"context"
	"strings"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/cognitive"
)

// Lucius turns the ACTION tag into a stepwise execution plan.
type Lucius struct{}

func NewLucius() *Lucius { return &Lucius{} }

func (l *Lucius) Minister() asl.Minister { return asl.MinisterLucius }

func (l *Lucius) Process(_ context.Context, pc *cognitive.Context) (map[string]any, error) {
	action := ""
	if pc.Parsed != nil {
		action = pc.Parsed.Tags[asl.TagAction]
	}

	steps := planSteps(action)
	return map[string]any{
		"action":     action,
		"steps":      steps,
		"step_count": len(steps),
		"ready":      action != "",
	}, nil
}

// planSteps breaks an action phrase into ordered steps. Conjunctions
// split the phrase; a bare phrase becomes a single step.
func planSteps(action string) []string {
	if action == "" {
		return nil
	}
	var steps []string
	for _, part := range strings.FieldsFunc(action, func(r rune) bool {
		return r == ',' || r == ';'
	}) {
		for _, sub := range strings.Split(part, " and ") {
			if s := strings.TrimSpace(sub); s != "" {
				steps = append(steps, s)
			}
		}
	}
	return steps
}
