package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/TruthWeaver/internal/render"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(view *render.View) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Truth Weaver Analysis\n\n")

	f.writeSummaryTable(&b, view)

	if view.Error != nil {
		b.WriteString("## Error\n\n")
		fmt.Fprintf(&b, "> **%s**\n>\n> %s\n\n", escapeMarkdown(view.Error.Message), view.Error.Hint)
	}

	if view.Transcript != "" {
		b.WriteString("## Transcript\n\n")
		b.WriteString("```\n" + view.Transcript + "\n```\n\n")
	}

	if view.Analysis != nil {
		f.writeTruthTable(&b, view.Analysis)
		f.writePatternSections(&b, view.Analysis.Patterns)
	}

	b.WriteString("---\n")
	b.WriteString("*Report generated by truthweaver*\n")

	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, view *render.View) {
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| Status | %s |\n", view.Status)
	if view.FileName != "" {
		fmt.Fprintf(b, "| File | %s |\n", escapeMarkdown(view.FileSummary()))
	}
	if view.RequestID != "" {
		fmt.Fprintf(b, "| Request ID | `%s` |\n", view.RequestID)
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writeTruthTable(b *strings.Builder, av *render.AnalysisView) {
	b.WriteString("## Revealed Truth\n\n")
	if av.ShadowID != "" {
		fmt.Fprintf(b, "Shadow ID: `%s`\n\n", av.ShadowID)
	}

	if len(av.Truth) == 0 {
		b.WriteString("_No facts reported._\n\n")
		return
	}

	b.WriteString("| Attribute | Value |\n")
	b.WriteString("|-----------|-------|\n")
	for _, row := range av.Truth {
		fmt.Fprintf(b, "| %s | %s |\n", escapeMarkdown(row.Label), escapeMarkdown(row.Value))
	}
	b.WriteString("\n")
}

func (f *markdownFormatter) writePatternSections(b *strings.Builder, patterns []render.PatternBlock) {
	b.WriteString("## Deception Patterns\n\n")

	if len(patterns) == 0 {
		b.WriteString("_No deception patterns detected._\n\n")
		return
	}

	for _, p := range patterns {
		fmt.Fprintf(b, "### %s\n\n", escapeMarkdown(p.Heading()))
		for _, claim := range p.Claims {
			fmt.Fprintf(b, "- %s\n", escapeMarkdown(claim))
		}
		b.WriteString("\n")
	}
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

// escapeMarkdown keeps values from breaking table rows
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
