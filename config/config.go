// Package config loads the converter's settings from YAML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/h5value/decode"
	"github.com/robert-malhotra/h5value/tree"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTree = "tree"
)

// Duplicate policies as written in the file.
const (
	DuplicatesError    = "error"
	DuplicatesLastWins = "last-wins"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds all settings. Zero fields in a loaded file keep their
// defaults.
type Config struct {
	MaxDepth   int    `yaml:"max_depth"`
	Duplicates string `yaml:"duplicates"`
	Format     string `yaml:"format"`
	Color      string `yaml:"color"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxDepth:   decode.DefaultMaxDepth,
		Duplicates: DuplicatesError,
		Format:     FormatJSON,
		Color:      ColorAuto,
		LogLevel:   "warn",
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes YAML from r over the defaults. Unknown keys are an error.
func Read(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if _, err := c.DuplicatePolicy(); err != nil {
		return err
	}
	switch c.Format {
	case FormatJSON, FormatYAML, FormatTree:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q", c.Color)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// DuplicatePolicy maps Duplicates onto the decoder's policy.
func (c Config) DuplicatePolicy() (decode.DuplicatePolicy, error) {
	switch c.Duplicates {
	case DuplicatesError:
		return decode.DuplicateError, nil
	case DuplicatesLastWins:
		return decode.DuplicateLastWins, nil
	}
	return 0, fmt.Errorf("unknown duplicates policy %q", c.Duplicates)
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// DecodeOptions returns the tree options for c. c must be valid.
func (c Config) DecodeOptions() []tree.Option {
	dup, _ := c.DuplicatePolicy()
	return []tree.Option{
		tree.WithMaxDepth(c.MaxDepth),
		tree.WithDuplicatePolicy(dup),
	}
}
