// Package render projects a session snapshot into a displayable view.
// Build is pure: no I/O and no mutation of the snapshot.
package render

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yildizm/TruthWeaver/internal/analysis"
	"github.com/yildizm/TruthWeaver/internal/session"
)

const (
	LabelSubmit     = "Transcribe & Analyze"
	LabelProcessing = "Processing..."
	Hint            = "Tips: Ensure audio is clear, has speech content, and you have internet connection"
)

// View is everything a surface needs to draw one frame
type View struct {
	Status      string        `json:"status"`
	Busy        bool          `json:"busy"`
	CanSubmit   bool          `json:"can_submit"`
	SubmitLabel string        `json:"submit_label"`
	FileName    string        `json:"file_name,omitempty"`
	FileSize    int           `json:"file_size,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
	Error       *ErrorBlock   `json:"error,omitempty"`
	Transcript  string        `json:"transcript,omitempty"`
	Analysis    *AnalysisView `json:"analysis,omitempty"`
}

// ErrorBlock is the failure message with its static hint
type ErrorBlock struct {
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

// AnalysisView is the rendered analysis
type AnalysisView struct {
	ShadowID string         `json:"shadow_id,omitempty"`
	Truth    []Row          `json:"revealed_truth"`
	Patterns []PatternBlock `json:"deception_patterns"`
}

// Row is one revealed-truth line
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// String returns "Label: value"
func (r Row) String() string {
	return r.Label + ": " + r.Value
}

// PatternBlock is one detected deception pattern. LieType is shown as sent.
type PatternBlock struct {
	LieType string   `json:"lie_type"`
	Claims  []string `json:"contradictory_claims"`
}

// Heading returns "Type: lie_type"
func (p PatternBlock) Heading() string {
	return "Type: " + p.LieType
}

// HasResults reports whether there is anything besides status to show
func (v *View) HasResults() bool {
	return v.Transcript != "" || v.Analysis != nil
}

// Build derives the view from a snapshot
func Build(snap session.Snapshot) View {
	view := View{
		Status:      snap.Status.String(),
		Busy:        snap.Status == session.StatusInFlight,
		CanSubmit:   snap.Status.CanSubmit(),
		SubmitLabel: LabelSubmit,
		RequestID:   snap.RequestID,
		Transcript:  snap.Transcript,
	}
	if view.Busy {
		view.SubmitLabel = LabelProcessing
	}

	if snap.File != nil {
		view.FileName = snap.File.Name
		view.FileSize = snap.File.Size()
		view.Duration = snap.File.Duration()
	}

	if snap.HasError() {
		view.Error = &ErrorBlock{Message: snap.ErrorMessage, Hint: Hint}
	}

	if snap.Analysis != nil {
		view.Analysis = buildAnalysis(snap.Analysis)
	}

	return view
}

func buildAnalysis(result *analysis.Result) *AnalysisView {
	av := &AnalysisView{
		ShadowID: result.ShadowID,
		Truth:    make([]Row, 0, len(result.RevealedTruth)),
		Patterns: make([]PatternBlock, 0, len(result.DeceptionPatterns)),
	}

	for _, fact := range result.RevealedTruth {
		av.Truth = append(av.Truth, Row{
			Key:   fact.Key,
			Label: HumanizeKey(fact.Key),
			Value: fact.Value.String(),
		})
	}

	for _, p := range result.DeceptionPatterns {
		claims := make([]string, len(p.ContradictoryClaims))
		copy(claims, p.ContradictoryClaims)
		av.Patterns = append(av.Patterns, PatternBlock{
			LieType: p.LieType,
			Claims:  claims,
		})
	}

	return av
}

// HumanizeKey replaces underscores with spaces and capitalises the first
// character of every word when it is a letter. The rest of each word is
// left untouched, so "2nd_place" becomes "2nd Place".
func HumanizeKey(key string) string {
	// Casers are stateful; one per call
	title := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	wordStart := true
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		if wordStart && unicode.IsLetter(r) {
			b.WriteString(title.String(string(r)))
		} else {
			b.WriteRune(r)
		}
		wordStart = unicode.IsSpace(r)
	}
	return b.String()
}

// FormatBytes renders a byte count for humans
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := int64(n) / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FileSummary returns "name (size)", adding the duration when it is known
func (v *View) FileSummary() string {
	if v.FileName == "" {
		return ""
	}
	if v.Duration > 0 {
		return fmt.Sprintf("%s (%s, %s)", v.FileName, FormatBytes(v.FileSize), v.Duration.Round(100*time.Millisecond))
	}
	return fmt.Sprintf("%s (%s)", v.FileName, FormatBytes(v.FileSize))
}
