package weaver

import (
	"encoding/json"

	"github.com/yildizm/TruthWeaver/internal/analysis"
)

// Upload is one file to submit
type Upload struct {
	RequestID string
	Filename  string
	MIMEType  string
	Data      []byte
}

// Response is a successful analysis
type Response struct {
	Transcript string
	Analysis   *analysis.Result
}

// Health is the reply of the service health probe
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Healthy reports whether the service declared itself healthy
func (h *Health) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// successEnvelope is the 2xx body. Success stays raw so only a literal true
// counts; transcript stays raw so any JSON value is passed through as text.
type successEnvelope struct {
	Success    json.RawMessage `json:"success"`
	Transcript json.RawMessage `json:"transcript"`
	Analysis   json.RawMessage `json:"analysis"`
}

// errorEnvelope is the non-2xx body. Error stays raw so non-string values fall back.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}
