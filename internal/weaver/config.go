package weaver

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultBaseURL        = "https://truth-weaver.onrender.com"
	DefaultUserAgent      = "truthweaver-cli"
	DefaultMaxUploadBytes = 16 << 20

	transcribePath = "/transcribe-and-analyze"
	healthPath     = "/health"
	audioFieldName = "audio"
)

// Config configures the service client. A zero Timeout means no timeout.
type Config struct {
	BaseURL        string        `json:"base_url"`
	Timeout        time.Duration `json:"timeout"`
	UserAgent      string        `json:"user_agent"`
	MaxUploadBytes int64         `json:"max_upload_bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return NewConfigurationError("base_url", "base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return NewConfigurationError("base_url", fmt.Sprintf("invalid base URL: %v", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewConfigurationError("base_url", fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return NewConfigurationError("base_url", "base URL must include a host")
	}

	if c.Timeout < 0 {
		return NewConfigurationError("timeout", "timeout cannot be negative")
	}

	if c.MaxUploadBytes <= 0 {
		return NewConfigurationError("max_upload_bytes", "upload limit must be positive")
	}

	return nil
}
