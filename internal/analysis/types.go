package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteAnalysis is returned when a payload lacks one of the sections
// a result must carry.
var ErrIncompleteAnalysis = errors.New("incomplete analysis payload")

// Result is the structured deception analysis returned by the service
type Result struct {
	// ShadowID identifies the analysed recording, when the service sends one
	ShadowID string `json:"shadow_id,omitempty"`

	// RevealedTruth holds the facts the service considers genuinely disclosed,
	// in payload order
	RevealedTruth Truth `json:"revealed_truth"`

	// DeceptionPatterns lists detected contradictions, in payload order
	DeceptionPatterns []Pattern `json:"deception_patterns"`
}

// Pattern is one detected instance of contradictory claims
type Pattern struct {
	LieType             string  `json:"lie_type"`
	ContradictoryClaims Strings `json:"contradictory_claims"`
}

// Fact is a single revealed-truth entry
type Fact struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// Truth is an ordered list of facts. It is never backed by a map so that the
// order of the payload survives decoding.
type Truth []Fact

// Get returns the value stored under key
func (t Truth) Get(key string) (Value, bool) {
	for _, f := range t {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the fact keys in order
func (t Truth) Keys() []string {
	keys := make([]string, 0, len(t))
	for _, f := range t {
		keys = append(keys, f.Key)
	}
	return keys
}

// UnmarshalJSON accepts either a JSON object, walked in token order, or an
// explicit array of {"key", "value"} pairs.
func (t *Truth) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var pairs []Fact
		if err := json.Unmarshal(trimmed, &pairs); err != nil {
			return fmt.Errorf("revealed_truth pairs: %w", err)
		}
		*t = Truth(pairs)
		return nil
	case '{':
		facts, err := decodeOrderedObject(trimmed)
		if err != nil {
			return fmt.Errorf("revealed_truth: %w", err)
		}
		*t = facts
		return nil
	default:
		return fmt.Errorf("revealed_truth: expected object or array, got %q", string(trimmed[:1]))
	}
}

// decodeOrderedObject reads an object key by key. A repeated key keeps the
// position of its first occurrence and takes the last value.
func decodeOrderedObject(data []byte) (Truth, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	facts := Truth{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var v Value
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			facts[i].Value = v
			continue
		}
		index[key] = len(facts)
		facts = append(facts, Fact{Key: key, Value: v})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return facts, nil
}

// Value is a revealed-truth value: either a single string or a list
type Value struct {
	Text   string
	Items  []string
	IsList bool
}

// Text creates a single-string value
func Text(s string) Value {
	return Value{Text: s}
}

// List creates a list value
func List(items ...string) Value {
	return Value{Items: items, IsList: true}
}

// String renders the value for display; lists are joined with ", "
func (v Value) String() string {
	if v.IsList {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// UnmarshalJSON decodes strings and arrays. Null is empty and any other
// scalar keeps its JSON literal text.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*v = Value{}
		return nil
	}

	if trimmed[0] == '[' {
		var items Strings
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*v = Value{Items: []string(items), IsList: true}
		return nil
	}

	text, err := scalarText(trimmed)
	if err != nil {
		return err
	}
	*v = Value{Text: text}
	return nil
}

// MarshalJSON encodes lists as arrays and everything else as a string
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

// Strings is a list of strings that tolerates null and non-string elements
type Strings []string

// UnmarshalJSON decodes an array; null decodes to an empty list
func (s *Strings) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Strings{}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}

	out := make(Strings, 0, len(raw))
	for _, item := range raw {
		text, err := scalarText(bytes.TrimSpace(item))
		if err != nil {
			return err
		}
		out = append(out, text)
	}
	*s = out
	return nil
}

// MarshalJSON never emits null
func (s Strings) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// RawText renders any JSON value as display text: strings unquoted, null
// empty, everything else as compact JSON.
func RawText(data json.RawMessage) (string, error) {
	return scalarText(bytes.TrimSpace(data))
}

func scalarText(data []byte) (string, error) {
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return "", nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	case data[0] == '{' || data[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		if !json.Valid(data) {
			return "", fmt.Errorf("invalid JSON value %q", string(data))
		}
		return string(data), nil
	}
}
