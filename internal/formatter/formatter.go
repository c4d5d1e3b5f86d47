package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/TruthWeaver/internal/render"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(view *render.View) ([]byte, error)
}

// Options select terminal features for formatters that support them
type Options struct {
	Color bool
	Emoji bool
}

// Names lists the supported output formats
var Names = []string{"text", "json", "markdown", "csv"}

// New returns the formatter registered under name
func New(name string, opts Options) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text", "terminal":
		return NewTerminalWithOptions(opts.Color, opts.Emoji), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (valid: %s)", name, strings.Join(Names, ", "))
	}
}
