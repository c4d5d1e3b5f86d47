package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "TRUTHWEAVER_"

// dotEnvDepth bounds the upward search for a .env file
const dotEnvDepth = 8

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.truthweaver.yaml",               // Project-specific config (highest priority)
	"~/.config/truthweaver/config.yaml", // User config
	"/etc/truthweaver/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	dotEnvStart string
	lookupEnv   func(string) (string, bool)
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		dotEnvStart: ".",
		lookupEnv:   os.LookupEnv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. The nearest .env file (never overriding the real environment)
// 4. ./.truthweaver.yaml
// 5. ~/.config/truthweaver/config.yaml
// 6. /etc/truthweaver/config.yaml
// 7. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	dotEnv, err := l.readDotEnv()
	if err != nil {
		return nil, err
	}

	if err := l.applyEnvOverrides(config, dotEnv); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file over config. Keys absent from the file
// keep their current values.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// readDotEnv finds the nearest .env walking upward from dotEnvStart
func (l *Loader) readDotEnv() (map[string]string, error) {
	path, ok := FindDotEnv(l.dotEnvStart)
	if !ok {
		return nil, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// FindDotEnv returns the closest .env file at or above start
func FindDotEnv(start string) (string, bool) {
	if start == "" {
		return "", false
	}

	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}

	for i := 0; i < dotEnvDepth; i++ {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// applyEnvOverrides applies environment variable overrides to the config.
// The real environment wins over values read from .env.
func (l *Loader) applyEnvOverrides(config *Config, dotEnv map[string]string) error {
	envMappings := map[string]func(string) error{
		// Service Config
		"SERVICE_BASE_URL":   func(v string) error { config.Service.BaseURL = v; return nil },
		"SERVICE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Service.Timeout) },
		"SERVICE_USER_AGENT": func(v string) error { config.Service.UserAgent = v; return nil },

		// Upload Config
		"UPLOAD_MAX_FILE_SIZE": func(v string) error { return parseInt64(v, &config.Upload.MaxFileSize) },

		// Output Config
		"OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },

		// Logging Config
		"LOGGING_LEVEL":  func(v string) error { config.Logging.Level = v; return nil },
		"LOGGING_FORMAT": func(v string) error { config.Logging.Format = v; return nil },
		"LOGGING_FILE":   func(v string) error { config.Logging.File = v; return nil },

		// Metrics Config
		"METRICS_LISTEN_ADDR": func(v string) error { config.Metrics.ListenAddr = v; return nil },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		value, ok := l.lookupEnv(envVar)
		if !ok {
			value = dotEnv[envVar]
		}
		if value == "" {
			continue
		}
		if err := setter(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", envVar, err)
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
