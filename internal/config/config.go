// Package config provides the typed (section, name) parameter lookup that
// experiments are built from. Configuration files are two-level YAML
// documents: top-level keys are sections (one per component, with resource
// sections named "Resource:<name>"), and each section maps parameter names
// to scalar values.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidValue     = errors.New("invalid parameter value")
)

// Config holds parsed configuration sections.
type Config struct {
	sections map[string]map[string]any
}

// New returns an empty Config, useful for building configurations in code
// and in tests.
func New() *Config {
	return &Config{sections: make(map[string]map[string]any)}
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	raw := make(map[string]map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := New()
	for section, values := range raw {
		if values == nil {
			values = make(map[string]any)
		}
		cfg.sections[section] = values
	}
	return cfg, nil
}

// Set stores a value, creating the section if needed.
func (c *Config) Set(section, name string, value any) {
	s, ok := c.sections[section]
	if !ok {
		s = make(map[string]any)
		c.sections[section] = s
	}
	s[name] = value
}

// HasSection reports whether the named section exists.
func (c *Config) HasSection(section string) bool {
	_, ok := c.sections[section]
	return ok
}

// Sections returns the sorted section names.
func (c *Config) Sections() []string {
	names := make([]string, 0, len(c.sections))
	for name := range c.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *Config) lookup(section, name string) (any, bool) {
	s, ok := c.sections[section]
	if !ok {
		return nil, false
	}
	v, ok := s[name]
	return v, ok
}

// GetString returns the named parameter, or def if it is not set.
func (c *Config) GetString(section, name, def string) string {
	v, ok := c.lookup(section, name)
	if !ok {
		return def
	}
	return fmt.Sprintf("%v", v)
}

// RequireString returns the named parameter or ErrMissingParameter.
func (c *Config) RequireString(section, name string) (string, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return "", fmt.Errorf("%w: %s.%s", ErrMissingParameter, section, name)
	}
	return fmt.Sprintf("%v", v), nil
}

// GetInt returns the named integer parameter, or def if it is not set.
// A set but non-integer value is an error.
func (c *Config) GetInt(section, name string, def int) (int, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return def, nil
	}
	return coerceInt(section, name, v)
}

// RequireInt returns the named integer parameter or ErrMissingParameter.
func (c *Config) RequireInt(section, name string) (int, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrMissingParameter, section, name)
	}
	return coerceInt(section, name, v)
}

// GetFloat returns the named float parameter, or def if it is not set.
func (c *Config) GetFloat(section, name string, def float64) (float64, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return def, nil
	}
	return coerceFloat(section, name, v)
}

// RequireFloat returns the named float parameter or ErrMissingParameter.
func (c *Config) RequireFloat(section, name string) (float64, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return 0, fmt.Errorf("%w: %s.%s", ErrMissingParameter, section, name)
	}
	return coerceFloat(section, name, v)
}

// GetBool returns the named boolean parameter, or def if it is not set.
func (c *Config) GetBool(section, name string, def bool) (bool, error) {
	v, ok := c.lookup(section, name)
	if !ok {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %s.%s=%v is not a boolean", ErrInvalidValue, section, name, v)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: %s.%s=%v is not a boolean", ErrInvalidValue, section, name, v)
	}
}

func coerceInt(section, name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s=%v is not an integer", ErrInvalidValue, section, name, v)
}

func coerceFloat(section, name string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("%w: %s.%s=%v is not a number", ErrInvalidValue, section, name, v)
}
