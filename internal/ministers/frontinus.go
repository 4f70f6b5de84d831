package ministers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/aetheroos/aethero/internal/asl"
	"github.com/aetheroos/aethero/internal/cognitive"
)

// Frontinus specifies the interface for presenting the pipeline result
// and renders a markdown summary of the run to HTML.
type Frontinus struct {
	md goldmark.Markdown
}

func NewFrontinus() *Frontinus {
	return &Frontinus{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
				),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

func (f *Frontinus) Minister() asl.Minister { return asl.MinisterFrontinus }

func (f *Frontinus) Process(_ context.Context, pc *cognitive.Context) (map[string]any, error) {
	output := ""
	if pc.Parsed != nil {
		output = pc.Parsed.Tags[asl.TagOutput]
	}

	view := viewFor(output)
	summary := f.summaryMarkdown(pc, output, view)

	var htmlBuf bytes.Buffer
	if err := f.md.Convert([]byte(summary), &htmlBuf); err != nil {
		return nil, fmt.Errorf("rendering summary: %w", err)
	}

	return map[string]any{
		"output_target": output,
		"view":          view,
		"summary_md":    summary,
		"summary_html":  htmlBuf.String(),
	}, nil
}

// viewFor picks a presentation view from the OUTPUT tag value.
func viewFor(output string) string {
	o := strings.ToLower(output)
	switch {
	case strings.Contains(o, "dashboard"):
		return "dashboard"
	case strings.Contains(o, "report"):
		return "report"
	case strings.Contains(o, "table"), strings.Contains(o, "list"):
		return "table"
	}
	return "text"
}

func (f *Frontinus) summaryMarkdown(pc *cognitive.Context, output, view string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Session %s\n\n", pc.SessionID)
	fmt.Fprintf(&b, "- **View**: %s\n", view)
	if output != "" {
		fmt.Fprintf(&b, "- **Output target**: %s\n", output)
	}
	if intent, ok := pc.Data["intent"].(string); ok && intent != "" {
		fmt.Fprintf(&b, "- **Intent**: %s\n", intent)
	}
	if steps, ok := pc.Data["steps"].([]string); ok && len(steps) > 0 {
		b.WriteString("\n### Plan\n\n")
		for i, s := range steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
	}
	return b.String()
}
