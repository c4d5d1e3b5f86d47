package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/TruthWeaver/internal/render"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	return NewTerminalWithOptions(color, true)
}

// NewTerminalWithOptions creates a terminal formatter with color and emoji switches
func NewTerminalWithOptions(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(view *render.View) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeRequest(&b, view)

	if view.Error != nil {
		f.writeError(&b, view.Error)
	}

	if view.Transcript != "" {
		f.writeTranscript(&b, view.Transcript)
	}

	if view.Analysis != nil {
		f.writeTruth(&b, view.Analysis)
		f.writePatterns(&b, view.Analysis.Patterns)
	}

	return []byte(b.String()), nil
}

// writeHeader writes the boxed title
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Truth Weaver Analysis"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

func (f *terminalFormatter) writeRequest(b *strings.Builder, view *render.View) {
	fmt.Fprintf(b, "%s Request\n", symbol("statistics", "#", f.opts))

	key, fallback := statusSymbolKey(view.Status)
	items := []termfmt.TreeItem{
		{Label: "Status", Value: symbol(key, fallback, f.opts) + " " + view.Status},
	}
	if view.FileName != "" {
		items = append(items, termfmt.TreeItem{
			Label: "File",
			Value: view.FileSummary(),
		})
	}
	if view.RequestID != "" {
		items = append(items, termfmt.TreeItem{Label: "Request ID", Value: view.RequestID})
	}
	items[len(items)-1].Last = true

	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writeError(b *strings.Builder, block *render.ErrorBlock) {
	fmt.Fprintf(b, "%s %s\n", symbol("error", "!", f.opts), block.Message)
	fmt.Fprintf(b, "%s %s\n\n", symbol("help", "?", f.opts), block.Hint)
}

func (f *terminalFormatter) writeTranscript(b *strings.Builder, transcript string) {
	fmt.Fprintf(b, "%s Transcript\n", symbol("summary", "📝", f.opts))
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(transcript + "\n\n")
}

func (f *terminalFormatter) writeTruth(b *strings.Builder, av *render.AnalysisView) {
	title := "Revealed Truth"
	if av.ShadowID != "" {
		title += " (" + av.ShadowID + ")"
	}
	fmt.Fprintf(b, "%s %s\n", symbol("target", "🎯", f.opts), title)

	if len(av.Truth) == 0 {
		b.WriteString("└─ (none)\n\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(av.Truth))
	for i, row := range av.Truth {
		items = append(items, termfmt.TreeItem{
			Label: row.Label,
			Value: row.Value,
			Last:  i == len(av.Truth)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) writePatterns(b *strings.Builder, patterns []render.PatternBlock) {
	fmt.Fprintf(b, "%s Deception Patterns\n", symbol("anomaly_pattern", "⚠", f.opts))

	if len(patterns) == 0 {
		b.WriteString("└─ (none detected)\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(patterns))
	for i, p := range patterns {
		children := make([]termfmt.TreeItem, 0, len(p.Claims))
		for j, claim := range p.Claims {
			children = append(children, termfmt.TreeItem{
				Label: claim,
				Last:  j == len(p.Claims)-1,
			})
		}

		items = append(items, termfmt.TreeItem{
			Label:    fmt.Sprintf("%s %s", symbol("pattern", "*", f.opts), p.Heading()),
			Value:    fmt.Sprintf("(%d claims)", len(p.Claims)),
			Children: children,
			Last:     i == len(patterns)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}
