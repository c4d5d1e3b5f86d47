package config

import (
	"strings"
	"testing"
	"time"

	"github.com/yildizm/TruthWeaver/internal/weaver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.Service.BaseURL != weaver.DefaultBaseURL {
		t.Errorf("Expected base URL %s, got %s", weaver.DefaultBaseURL, cfg.Service.BaseURL)
	}
	if cfg.Service.Timeout != 0 {
		t.Errorf("Expected no timeout by default, got %v", cfg.Service.Timeout)
	}
	if cfg.Upload.MaxFileSize != weaver.DefaultMaxUploadBytes {
		t.Errorf("Expected max file size %d, got %d", weaver.DefaultMaxUploadBytes, cfg.Upload.MaxFileSize)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("Expected output format text, got %s", cfg.Output.DefaultFormat)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:   "missing base URL",
			mutate: func(c *Config) { c.Service.BaseURL = "" },
			errMsg: "service base_url is required",
		},
		{
			name:   "unsupported scheme",
			mutate: func(c *Config) { c.Service.BaseURL = "ftp://example.com" },
			errMsg: "scheme must be http or https",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Service.Timeout = -time.Second },
			errMsg: "service timeout must be non-negative",
		},
		{
			name:   "invalid output format",
			mutate: func(c *Config) { c.Output.DefaultFormat = "invalid" },
			errMsg: "invalid output format: invalid (must be one of: json, text, markdown, csv)",
		},
		{
			name:   "invalid color mode",
			mutate: func(c *Config) { c.Output.ColorMode = "sometimes" },
			errMsg: "invalid color mode: sometimes",
		},
		{
			name:   "invalid theme",
			mutate: func(c *Config) { c.Output.Theme = "neon" },
			errMsg: "invalid theme: neon",
		},
		{
			name:   "invalid log level",
			mutate: func(c *Config) { c.Logging.Level = "trace" },
			errMsg: "invalid log level: trace",
		},
		{
			name:   "invalid log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			errMsg: "invalid log format: xml",
		},
		{
			name:   "zero upload limit",
			mutate: func(c *Config) { c.Upload.MaxFileSize = 0 },
			errMsg: "max_file_size must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.errMsg)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errMsg, err.Error())
			}
		})
	}
}

func TestWeaverConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Service.BaseURL = "http://localhost:8080"
	cfg.Service.Timeout = 30 * time.Second
	cfg.Upload.MaxFileSize = 1024

	wc := cfg.WeaverConfig()
	if wc.BaseURL != "http://localhost:8080" || wc.Timeout != 30*time.Second || wc.MaxUploadBytes != 1024 {
		t.Errorf("unexpected weaver config %+v", wc)
	}
	if err := wc.Validate(); err != nil {
		t.Errorf("derived config should be valid: %v", err)
	}
}
