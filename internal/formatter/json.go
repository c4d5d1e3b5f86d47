package formatter

import (
	"encoding/json"

	"github.com/yildizm/TruthWeaver/internal/render"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(view *render.View) ([]byte, error) {
	output := &JSONOutput{
		Status:     view.Status,
		RequestID:  view.RequestID,
		Error:      view.Error,
		Transcript: view.Transcript,
	}

	if view.FileName != "" {
		output.File = &FileOutput{Name: view.FileName, Size: view.FileSize, DurationSeconds: view.Duration.Seconds()}
	}

	if view.Analysis != nil {
		output.Analysis = createAnalysisOutput(view.Analysis)
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Status     string             `json:"status"`
	File       *FileOutput        `json:"file,omitempty"`
	RequestID  string             `json:"request_id,omitempty"`
	Error      *render.ErrorBlock `json:"error,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	Analysis   *AnalysisOutput    `json:"analysis,omitempty"`
}

// FileOutput describes the submitted file
type FileOutput struct {
	Name            string  `json:"name"`
	Size            int     `json:"size"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// AnalysisOutput keeps revealed truth as an ordered list of pairs
type AnalysisOutput struct {
	ShadowID          string          `json:"shadow_id,omitempty"`
	RevealedTruth     []TruthOutput   `json:"revealed_truth"`
	DeceptionPatterns []PatternOutput `json:"deception_patterns"`
}

// TruthOutput is one revealed-truth pair
type TruthOutput struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PatternOutput is one deception pattern
type PatternOutput struct {
	LieType             string   `json:"lie_type"`
	ContradictoryClaims []string `json:"contradictory_claims"`
}

func createAnalysisOutput(av *render.AnalysisView) *AnalysisOutput {
	out := &AnalysisOutput{
		ShadowID:          av.ShadowID,
		RevealedTruth:     make([]TruthOutput, 0, len(av.Truth)),
		DeceptionPatterns: make([]PatternOutput, 0, len(av.Patterns)),
	}

	for _, row := range av.Truth {
		out.RevealedTruth = append(out.RevealedTruth, TruthOutput{Key: row.Key, Label: row.Label, Value: row.Value})
	}

	for _, p := range av.Patterns {
		claims := p.Claims
		if claims == nil {
			claims = []string{}
		}
		out.DeceptionPatterns = append(out.DeceptionPatterns, PatternOutput{LieType: p.LieType, ContradictoryClaims: claims})
	}

	return out
}
