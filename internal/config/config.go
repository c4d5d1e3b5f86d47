package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/TruthWeaver/internal/weaver"
)

// Config holds the complete application configuration
type Config struct {
	Version string        `yaml:"version" json:"version"`
	Service ServiceConfig `yaml:"service" json:"service"`
	Upload  UploadConfig  `yaml:"upload" json:"upload"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServiceConfig configures the Truth Weaver endpoint
type ServiceConfig struct {
	BaseURL   string        `yaml:"base_url" json:"base_url"`     // service root URL
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`       // 0 means no timeout
	UserAgent string        `yaml:"user_agent" json:"user_agent"` // sent with every request
}

// UploadConfig configures local checks before upload
type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size" json:"max_file_size"` // bytes
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	Theme         string `yaml:"theme" json:"theme"`                   // default|high-contrast|minimal
	NoEmoji       bool   `yaml:"no_emoji" json:"no_emoji"`
}

// LoggingConfig configures the log sink
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug|info|warn|error
	Format string `yaml:"format" json:"format"` // console|json
	File   string `yaml:"file" json:"file"`     // log file while the TUI owns the terminal
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"` // empty disables the endpoint
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Service: ServiceConfig{
			BaseURL:   weaver.DefaultBaseURL,
			Timeout:   0,
			UserAgent: weaver.DefaultUserAgent,
		},
		Upload: UploadConfig{
			MaxFileSize: weaver.DefaultMaxUploadBytes,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Theme:         "default",
			NoEmoji:       false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateServiceConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateLoggingConfig(); err != nil {
		return err
	}
	if c.Upload.MaxFileSize < 1 {
		return fmt.Errorf("max_file_size must be greater than 0")
	}
	return nil
}

// validateServiceConfig validates the service endpoint
func (c *Config) validateServiceConfig() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service base_url is required")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid service base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid service base_url: scheme must be http or https")
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service timeout must be non-negative")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	if c.Output.Theme != "" {
		validThemes := map[string]bool{
			"default":       true,
			"high-contrast": true,
			"minimal":       true,
		}
		if !validThemes[c.Output.Theme] {
			return fmt.Errorf("invalid theme: %s (must be one of: default, high-contrast, minimal)", c.Output.Theme)
		}
	}
	return nil
}

// validateLoggingConfig validates the log sink settings
func (c *Config) validateLoggingConfig() error {
	if c.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[c.Logging.Level] {
			return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
		}
	}
	if c.Logging.Format != "" && c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.Logging.Format)
	}
	return nil
}

// WeaverConfig derives the service client configuration
func (c *Config) WeaverConfig() *weaver.Config {
	return &weaver.Config{
		BaseURL:        c.Service.BaseURL,
		Timeout:        c.Service.Timeout,
		UserAgent:      c.Service.UserAgent,
		MaxUploadBytes: c.Upload.MaxFileSize,
	}
}
