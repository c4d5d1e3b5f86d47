package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses the "analysis" member of a service response.
//
// It fails closed: a missing or null analysis, revealed_truth or
// deception_patterns yields ErrIncompleteAnalysis. Inside those sections,
// absent optional fields decode to empty values.
func Decode(raw json.RawMessage) (*Result, error) {
	if isAbsent(raw) {
		return nil, fmt.Errorf("%w: analysis missing", ErrIncompleteAnalysis)
	}

	var sections struct {
		ShadowID          *string         `json:"shadow_id"`
		RevealedTruth     json.RawMessage `json:"revealed_truth"`
		DeceptionPatterns json.RawMessage `json:"deception_patterns"`
	}
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}

	if isAbsent(sections.RevealedTruth) {
		return nil, fmt.Errorf("%w: revealed_truth missing", ErrIncompleteAnalysis)
	}
	if isAbsent(sections.DeceptionPatterns) {
		return nil, fmt.Errorf("%w: deception_patterns missing", ErrIncompleteAnalysis)
	}

	result := &Result{}
	if sections.ShadowID != nil {
		result.ShadowID = *sections.ShadowID
	}
	if err := json.Unmarshal(sections.RevealedTruth, &result.RevealedTruth); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sections.DeceptionPatterns, &result.DeceptionPatterns); err != nil {
		return nil, fmt.Errorf("deception_patterns: %w", err)
	}
	if result.RevealedTruth == nil {
		result.RevealedTruth = Truth{}
	}
	if result.DeceptionPatterns == nil {
		result.DeceptionPatterns = []Pattern{}
	}

	return result, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
