package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors
var (
	ErrConfigurationError   = errors.New("configuration error")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid value")
)

// Formats supported by the batch generator.
const (
	FormatZip = "zip"
	FormatPDF = "pdf"
)

// Defaults used when the config file leaves a value empty.
const (
	DefaultConcurrency = 5
	DefaultJPEGQuality = 95
)

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err == nil {
		return ErrConfigurationError
	}
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// FontConfig registers one font file under a family name.
type FontConfig struct {
	Family string `yaml:"family" json:"family"`
	// Src is a file path, or builtin:<name> for a bundled font.
	Src  string `yaml:"src" json:"src"`
	Bold Flag   `yaml:"bold,omitempty" json:"bold,omitempty"`
}

// Config contains the settings shared by every subcommand.
type Config struct {
	// DefaultFamily replaces unknown font families. Empty means the built-in "Go".
	DefaultFamily string       `yaml:"default-family,omitempty" json:"default_family,omitempty"`
	Fonts         []FontConfig `yaml:"fonts,omitempty" json:"fonts,omitempty"`
	Concurrency   int          `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	JPEGQuality   int          `yaml:"jpeg-quality,omitempty" json:"jpeg_quality,omitempty"`
	Format        string       `yaml:"format,omitempty" json:"format,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		Concurrency: DefaultConcurrency,
		JPEGQuality: DefaultJPEGQuality,
		Format:      FormatZip,
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data, fills defaults and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = DefaultJPEGQuality
	}
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = FormatZip
	}
}

// Validate checks value ranges and required font fields.
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Message: fmt.Sprintf("must be at least 1, got %d", c.Concurrency), Err: ErrInvalidValue}
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return &ConfigError{Field: "jpeg-quality", Message: fmt.Sprintf("must be between 1 and 100, got %d", c.JPEGQuality), Err: ErrInvalidValue}
	}
	if c.Format != FormatZip && c.Format != FormatPDF {
		return &ConfigError{Field: "format", Message: fmt.Sprintf("unsupported format %q", c.Format), Err: ErrInvalidValue}
	}
	for i, f := range c.Fonts {
		if strings.TrimSpace(f.Family) == "" {
			return &ConfigError{Field: fmt.Sprintf("fonts[%d].family", i), Message: "required field is missing", Err: ErrMissingRequiredField}
		}
		if strings.TrimSpace(f.Src) == "" {
			return &ConfigError{Field: fmt.Sprintf("fonts[%d].src", i), Message: "required field is missing", Err: ErrMissingRequiredField}
		}
	}
	return nil
}

// Flag is a boolean that also accepts the strings "bold" and "normal", so
// field files written for the browser editor keep working.
type Flag string

// UnmarshalYAML keeps the scalar text; interpretation happens in layout.ParseWeight.
func (f *Flag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: bold must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = Flag(node.Value)
	return nil
}

// MarshalYAML writes the flag back as a YAML boolean.
func (f Flag) MarshalYAML() (any, error) {
	return f.Bool(), nil
}

// Bool reports whether the flag selects bold.
func (f Flag) Bool() bool {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "true", "bold", "700":
		return true
	}
	return false
}
