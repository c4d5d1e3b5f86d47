// Package weaver is the HTTP client for the Truth Weaver analysis service.
package weaver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/yildizm/TruthWeaver/internal/analysis"
)

// Client talks to one Truth Weaver deployment
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
}

// New creates a client. A nil config uses DefaultConfig.
func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, NewConfigurationError("base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
	}, nil
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// MaxUploadBytes returns the configured upload limit
func (c *Client) MaxUploadBytes() int64 {
	return c.config.MaxUploadBytes
}

// TranscribeAndAnalyze uploads one recording and interprets the reply.
// Every failure is returned as *Error.
func (c *Client) TranscribeAndAnalyze(ctx context.Context, upload *Upload) (*Response, error) {
	if upload == nil {
		return nil, NewValidationError(MessageNoFile)
	}

	body, contentType, err := buildMultipart(upload)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeTransport, messageRequestBuild, err)
	}

	endpoint := c.baseURL.JoinPath(transcribePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeTransport, messageRequestBuild, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	c.setHeaders(req, upload.RequestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, payload)
	}

	return decodeSuccess(payload)
}

// HealthCheck probes GET /health
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	endpoint := c.baseURL.JoinPath(healthPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, NewErrorWithCause(ErrTypeTransport, "failed to create health check request", err)
	}
	c.setHeaders(req, "")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, payload)
	}

	var health Health
	if err := json.Unmarshal(payload, &health); err != nil {
		return nil, NewTransportError(err)
	}
	return &health, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
}

func handleErrorResponse(statusCode int, payload []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return NewServerError(statusCode, "")
	}

	var message string
	if err := json.Unmarshal(envelope.Error, &message); err != nil {
		return NewServerError(statusCode, "")
	}

	return NewServerError(statusCode, message)
}

func decodeSuccess(payload []byte) (*Response, error) {
	var envelope successEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, NewTransportError(err)
	}

	if !bytes.Equal(bytes.TrimSpace(envelope.Success), []byte("true")) {
		return nil, NewProcessingError(nil)
	}

	result, err := analysis.Decode(envelope.Analysis)
	if err != nil {
		return nil, NewProcessingError(err)
	}

	transcript, err := analysis.RawText(envelope.Transcript)
	if err != nil {
		return nil, NewTransportError(err)
	}
	return &Response{Transcript: transcript, Analysis: result}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func buildMultipart(upload *Upload) (io.Reader, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	mimeType := upload.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		audioFieldName, quoteEscaper.Replace(upload.Filename)))
	header.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("write audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &body, mw.FormDataContentType(), nil
}
