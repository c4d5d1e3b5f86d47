package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yildizm/TruthWeaver/internal/analysis"
	"github.com/yildizm/TruthWeaver/internal/render"
	"github.com/yildizm/TruthWeaver/internal/session"
)

func successView() *render.View {
	view := render.Build(session.Snapshot{
		File:       session.NewAudioFile("interview.wav", "audio/wav", make([]byte, 2048)),
		Status:     session.StatusSucceeded,
		Transcript: "I have led a team of ten engineers.",
		RequestID:  "req-42",
		Analysis: &analysis.Result{
			ShadowID: "shadow_7",
			RevealedTruth: analysis.Truth{
				{Key: "programming_experience", Value: analysis.Text("3-4 years")},
				{Key: "age", Value: analysis.Text("29")},
				{Key: "skills", Value: analysis.List("Go", "SQL")},
			},
			DeceptionPatterns: []analysis.Pattern{
				{LieType: "team_leadership", ContradictoryClaims: analysis.Strings{"led ten engineers", "worked alone"}},
			},
		},
	})
	return &view
}

func failedView() *render.View {
	view := render.Build(session.Snapshot{
		Status:       session.StatusFailed,
		ErrorMessage: "Failed to process audio: audio too short",
	})
	return &view
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "text", "json", "markdown", "md", "csv", "JSON"} {
		if _, err := New(name, Options{}); err != nil {
			t.Errorf("New(%q) error = %v", name, err)
		}
	}
	if _, err := New("xml", Options{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestTerminalFormatter(t *testing.T) {
	out, err := NewTerminalWithOptions(false, false).Format(successView())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Truth Weaver Analysis",
		"SUCCEEDED",
		"interview.wav",
		"2.0 KiB",
		"req-42",
		"I have led a team of ten engineers.",
		"shadow_7",
		"Programming Experience",
		"3-4 years",
		"Go, SQL",
		"Type: team_leadership",
		"led ten engineers",
		"worked alone",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	// truth rows keep payload order
	if strings.Index(text, "Programming Experience") > strings.Index(text, "Age") {
		t.Error("expected Programming Experience before Age")
	}
	if strings.Index(text, "led ten engineers") > strings.Index(text, "worked alone") {
		t.Error("expected claims in payload order")
	}
}

func TestTerminalFormatter_Failure(t *testing.T) {
	out, err := NewTerminal(false).Format(failedView())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	if !strings.Contains(text, "Failed to process audio: audio too short") {
		t.Errorf("missing error message:\n%s", text)
	}
	if !strings.Contains(text, render.Hint) {
		t.Errorf("missing hint:\n%s", text)
	}
	if strings.Contains(text, "Revealed Truth") {
		t.Error("failure output should not include analysis sections")
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSON().Format(successView())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var doc JSONOutput
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if doc.Status != "SUCCEEDED" || doc.File == nil || doc.File.Name != "interview.wav" {
		t.Errorf("unexpected header %+v", doc)
	}

	keys := make([]string, 0, len(doc.Analysis.RevealedTruth))
	for _, pair := range doc.Analysis.RevealedTruth {
		keys = append(keys, pair.Key)
	}
	if strings.Join(keys, ",") != "programming_experience,age,skills" {
		t.Errorf("truth order = %v", keys)
	}
	if doc.Analysis.RevealedTruth[2].Value != "Go, SQL" {
		t.Errorf("skills = %q", doc.Analysis.RevealedTruth[2].Value)
	}
	if len(doc.Analysis.DeceptionPatterns) != 1 || len(doc.Analysis.DeceptionPatterns[0].ContradictoryClaims) != 2 {
		t.Errorf("patterns = %+v", doc.Analysis.DeceptionPatterns)
	}
}

func TestJSONFormatter_EmptyPatternsEncodeAsArray(t *testing.T) {
	view := render.Build(session.Snapshot{
		Status: session.StatusSucceeded,
		Analysis: &analysis.Result{
			RevealedTruth:     analysis.Truth{},
			DeceptionPatterns: []analysis.Pattern{},
		},
	})

	out, err := NewJSON().Format(&view)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(out), `"deception_patterns": []`) {
		t.Errorf("expected empty array, got:\n%s", out)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := NewMarkdown().Format(successView())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Truth Weaver Analysis",
		"## Transcript",
		"| Programming Experience | 3-4 years |",
		"| Skills | Go, SQL |",
		"### Type: team_leadership",
		"- led ten engineers",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	view := render.Build(session.Snapshot{
		Status: session.StatusSucceeded,
		Analysis: &analysis.Result{
			RevealedTruth:     analysis.Truth{{Key: "note", Value: analysis.Text("a|b")}},
			DeceptionPatterns: []analysis.Pattern{},
		},
	})

	out, _ := NewMarkdown().Format(&view)
	if !strings.Contains(string(out), `| Note | a\|b |`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
}

func TestCSVFormatter(t *testing.T) {
	out, err := NewCSV().Format(successView())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}

	// header + 3 facts + 2 claims
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}
	if records[1][2] != "programming_experience" || records[3][4] != "Go, SQL" {
		t.Errorf("unexpected fact rows %v", records[1:4])
	}
	if records[5][0] != "deception_pattern" || records[5][4] != "worked alone" {
		t.Errorf("unexpected claim row %v", records[5])
	}
}

func TestFormatters_MissingLieTypeRendersEmpty(t *testing.T) {
	view := render.Build(session.Snapshot{
		Status: session.StatusSucceeded,
		Analysis: &analysis.Result{
			RevealedTruth:     analysis.Truth{},
			DeceptionPatterns: []analysis.Pattern{{ContradictoryClaims: analysis.Strings{"only claim"}}},
		},
	})

	for name, f := range map[string]Formatter{
		"text":     NewTerminalWithOptions(false, false),
		"markdown": NewMarkdown(),
	} {
		out, err := f.Format(&view)
		if err != nil {
			t.Fatalf("%s: Format() error = %v", name, err)
		}
		text := string(out)
		if !strings.Contains(text, "Type: ") || !strings.Contains(text, "only claim") {
			t.Errorf("%s: missing pattern heading or claim:\n%s", name, text)
		}
		if strings.Contains(text, "Unspecified") {
			t.Errorf("%s: absent lie_type must not be replaced:\n%s", name, text)
		}
	}
}
