// Package config loads keyview settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/rawterm/backend"
	"github.com/lixenwraith/rawterm/terminal"
)

// Config holds the application configuration
type Config struct {
	Engine        string   `yaml:"engine"`
	PollTimeoutMs int      `yaml:"poll_timeout_ms"`
	QuitKey       string   `yaml:"quit_key"`
	Colors        Colors   `yaml:"colors"`
	Face          []string `yaml:"face"`
	Bell          Bell     `yaml:"bell"`
	Log           Log      `yaml:"log"`
}

// Colors names the palette entries used for drawing
type Colors struct {
	Fg     string `yaml:"fg"`
	Bg     string `yaml:"bg"`
	Accent string `yaml:"accent"`
}

// Bell configures the audible feedback tone
type Bell struct {
	Enabled    bool    `yaml:"enabled"`
	Frequency  float64 `yaml:"frequency"`
	DurationMs int     `yaml:"duration_ms"`
	Volume     float64 `yaml:"volume"`
}

// Log configures the debug log file
type Log struct {
	Debug   bool   `yaml:"debug"`
	Dir     string `yaml:"dir"`
	MaxSize int64  `yaml:"max_size"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Engine:        "tcell",
		PollTimeoutMs: 250,
		QuitKey:       "ctrl_q",
		Colors: Colors{
			Fg:     "white",
			Bg:     "default",
			Accent: "cyan",
		},
		Face: []string{"bold"},
		Bell: Bell{
			Enabled:    false,
			Frequency:  880,
			DurationMs: 60,
			Volume:     0.5,
		},
		Log: Log{
			Debug:   false,
			Dir:     "logs",
			MaxSize: 10 * 1024 * 1024,
		},
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rawterm", "keyview.yaml")
}

// Load reads the configuration at path over the defaults.
// A missing file yields the defaults; unknown fields and invalid values are errors.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config read: %w", err)
	}

	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// Validate rejects unknown names and out-of-range values
func (c *Config) Validate() error {
	if !slices.Contains(backend.Names(), c.Engine) {
		return fmt.Errorf("engine %q: must be one of %v", c.Engine, backend.Names())
	}
	if c.PollTimeoutMs < 0 {
		return fmt.Errorf("poll_timeout_ms %d: must not be negative", c.PollTimeoutMs)
	}
	if _, ok := terminal.KeyByName(c.QuitKey); !ok {
		return fmt.Errorf("quit_key %q: unknown key name", c.QuitKey)
	}

	for _, def := range []struct {
		field string
		value string
	}{
		{"colors.fg", c.Colors.Fg},
		{"colors.bg", c.Colors.Bg},
		{"colors.accent", c.Colors.Accent},
	} {
		if _, ok := terminal.ColorByName(def.value); !ok {
			return fmt.Errorf("%s %q: unknown color", def.field, def.value)
		}
	}

	for _, name := range c.Face {
		if _, ok := terminal.FaceByName(name); !ok {
			return fmt.Errorf("face %q: unknown attribute", name)
		}
	}

	if c.Bell.Frequency <= 0 {
		return fmt.Errorf("bell.frequency %g: must be positive", c.Bell.Frequency)
	}
	if c.Bell.DurationMs <= 0 {
		return fmt.Errorf("bell.duration_ms %d: must be positive", c.Bell.DurationMs)
	}
	if c.Bell.Volume < 0 || c.Bell.Volume > 1 {
		return fmt.Errorf("bell.volume %g: must be within [0, 1]", c.Bell.Volume)
	}

	if c.Log.MaxSize <= 0 {
		return fmt.Errorf("log.max_size %d: must be positive", c.Log.MaxSize)
	}
	return nil
}

// PollTimeout returns the event wait as a duration; 0 means block
func (c *Config) PollTimeout() time.Duration {
	if c.PollTimeoutMs == 0 {
		return terminal.NoTimeout
	}
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}

// Quit resolves the quit key. Only valid after Validate
func (c *Config) Quit() terminal.Key {
	k, _ := terminal.KeyByName(c.QuitKey)
	return k
}

// Palette resolves the configured colors. Only valid after Validate
func (c *Config) Palette() (fg, bg, accent terminal.Color) {
	fg, _ = terminal.ColorByName(c.Colors.Fg)
	bg, _ = terminal.ColorByName(c.Colors.Bg)
	accent, _ = terminal.ColorByName(c.Colors.Accent)
	return fg, bg, accent
}

// Faces combines the configured attributes. Only valid after Validate
func (c *Config) Faces() terminal.Face {
	var f terminal.Face
	for _, name := range c.Face {
		v, _ := terminal.FaceByName(name)
		f |= v
	}
	return f
}

// BellDuration returns the tone length
func (c *Config) BellDuration() time.Duration {
	return time.Duration(c.Bell.DurationMs) * time.Millisecond
}
