// Package config handles configuration loading from TOML files and
// environment variables: editor-core runtime settings such as tab width,
// wrap, render budgets, and highlight cache limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	DefaultLanguage string                    `toml:"default_language"`
	Text            TextConfig                `toml:"text"`
	Cache           CacheConfig               `toml:"cache"`
	Render          RenderConfig              `toml:"render"`
	Languages       map[string]LanguageConfig `toml:"languages"`
}

// TextConfig holds document-wide text layout defaults.
type TextConfig struct {
	TabWidth int  `toml:"tab_width"`
	SoftWrap bool `toml:"soft_wrap"`
}

// TabWidthOrDefault returns the configured tab width or 4 if unset.
func (t TextConfig) TabWidthOrDefault() int {
	if t.TabWidth <= 0 {
		return 4
	}
	return t.TabWidth
}

// CacheConfig holds HighlightCache sizing.
type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
	MaxBytes   int `toml:"max_bytes"`
	Tolerance  int `toml:"unparsed_tolerance"`
}

// MaxEntriesOrDefault returns the configured entry cap or 512 if unset.
func (c CacheConfig) MaxEntriesOrDefault() int {
	if c.MaxEntries <= 0 {
		return 512
	}
	return c.MaxEntries
}

// MaxBytesOrDefault returns the configured byte cap or 4MiB if unset.
func (c CacheConfig) MaxBytesOrDefault() int {
	if c.MaxBytes <= 0 {
		return 4 << 20
	}
	return c.MaxBytes
}

// RenderConfig holds RenderPlan build budgets.
type RenderConfig struct {
	// MaxViewportLines bounds how many screen rows a single Build call will
	// lay out, guarding against a pathologically tall viewport request.
	MaxViewportLines int `toml:"max_viewport_lines"`
}

// MaxViewportLinesOrDefault returns the configured viewport row cap or 4096
// if unset.
func (r RenderConfig) MaxViewportLinesOrDefault() int {
	if r.MaxViewportLines <= 0 {
		return 4096
	}
	return r.MaxViewportLines
}

// LanguageConfig holds per-language overrides layered onto the language
// registry's built-in defaults (internal/loader.LanguageConfig).
type LanguageConfig struct {
	TextWidth   int    `toml:"text_width"`
	SoftWrap    *bool  `toml:"soft_wrap"`
	AutoFormat  bool   `toml:"auto_format"`
	CommentToken string `toml:"comment_token"`
}

// Load reads configuration from a TOML file and applies environment
// variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Languages: make(map[string]LanguageConfig),
	}

	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.Text.TabWidth < 0 {
		errs = append(errs, errors.New("text.tab_width must not be negative"))
	}
	if c.Cache.MaxEntries < 0 {
		errs = append(errs, errors.New("cache.max_entries must not be negative"))
	}
	if c.Cache.MaxBytes < 0 {
		errs = append(errs, errors.New("cache.max_bytes must not be negative"))
	}
	if c.Render.MaxViewportLines < 0 {
		errs = append(errs, errors.New("render.max_viewport_lines must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"EDITORCORE_DEFAULT_LANGUAGE", func(v string) {
			if v != "" {
				cfg.DefaultLanguage = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to editorcore's data directory
// (~/.config/editorcore).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "editorcore"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
