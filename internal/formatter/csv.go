package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/yildizm/TruthWeaver/internal/render"
)

// csvFormatter flattens the analysis into one row per fact and per claim
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(view *render.View) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	headers := []string{"Section", "Index", "Key", "Label", "Value"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	rows := [][]string{}
	if view.Analysis != nil {
		for i, row := range view.Analysis.Truth {
			rows = append(rows, []string{"revealed_truth", strconv.Itoa(i), row.Key, row.Label, row.Value})
		}
		for i, p := range view.Analysis.Patterns {
			if len(p.Claims) == 0 {
				rows = append(rows, []string{"deception_pattern", strconv.Itoa(i), p.LieType, "", ""})
				continue
			}
			for _, claim := range p.Claims {
				rows = append(rows, []string{"deception_pattern", strconv.Itoa(i), p.LieType, "", claim})
			}
		}
	}
	if view.Error != nil {
		rows = append(rows, []string{"error", "0", "", "", view.Error.Message})
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}
