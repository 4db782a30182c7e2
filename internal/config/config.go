// Package config loads the settings of the vscroll demo from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayn2op/vscroll"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the engine configuration.
type Config struct {
	Strategy StrategyConfig `toml:"strategy"`
	Viewport ViewportConfig `toml:"viewport"`
	Repeater RepeaterConfig `toml:"repeater"`
	LogLevel string         `toml:"log_level"`
}

// StrategyConfig holds the sizes of the fixed size strategy in cells.
type StrategyConfig struct {
	ItemSize  float64 `toml:"item_size"`
	MinBuffer float64 `toml:"min_buffer"`
	MaxBuffer float64 `toml:"max_buffer"`
}

// ViewportConfig configures the viewport.
type ViewportConfig struct {
	Orientation string   `toml:"orientation"`
	AppendOnly  bool     `toml:"append_only"`
	RTL         bool     `toml:"rtl"`
	ScrollBar   bool     `toml:"scroll_bar"`
	AuditTime   Duration `toml:"audit_time"`
}

// RepeaterConfig configures the repeater.
type RepeaterConfig struct {
	TemplateCacheSize int `toml:"template_cache_size"`
}

// Duration is a time.Duration written as a string such as "16ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Strategy: StrategyConfig{
			ItemSize:  1,
			MinBuffer: 10,
			MaxBuffer: 20,
		},
		Viewport: ViewportConfig{
			Orientation: vscroll.OrientationVertical.String(),
			ScrollBar:   true,
		},
		Repeater: RepeaterConfig{
			TemplateCacheSize: 20,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the path of the configuration file in the user's
// configuration directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "vscroll", "config.toml")
}

// Load reads the configuration at path. Settings missing from the file keep
// their defaults; a missing file yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration with the same rules as the engine.
func (c *Config) Validate() error {
	if _, err := vscroll.NewFixedSizeStrategy(c.Strategy.ItemSize, c.Strategy.MinBuffer, c.Strategy.MaxBuffer); err != nil {
		return err
	}
	if c.Repeater.TemplateCacheSize < 0 {
		return fmt.Errorf("template cache size %d: %w", c.Repeater.TemplateCacheSize, vscroll.ErrInvalidCacheSize)
	}
	if _, ok := vscroll.ParseOrientation(c.Viewport.Orientation); !ok {
		return fmt.Errorf("unknown orientation %q", c.Viewport.Orientation)
	}
	if c.Viewport.AuditTime.Duration < 0 {
		return fmt.Errorf("audit time %s must not be negative", c.Viewport.AuditTime)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Orientation returns the configured scroll axis. It assumes a validated
// configuration.
func (c *Config) Orientation() vscroll.Orientation {
	orientation, _ := vscroll.ParseOrientation(c.Viewport.Orientation)
	return orientation
}

// Direction returns the configured layout direction.
func (c *Config) Direction() vscroll.Direction {
	if c.Viewport.RTL {
		return vscroll.DirectionRTL
	}
	return vscroll.DirectionLTR
}

// ViewportOptions returns the viewport options described by the
// configuration.
func (c *Config) ViewportOptions() []vscroll.ViewportOption {
	return []vscroll.ViewportOption{
		vscroll.WithOrientation(c.Orientation()),
		vscroll.WithDirection(c.Direction()),
		vscroll.WithAppendOnly(c.Viewport.AppendOnly),
		vscroll.WithScrollBar(c.Viewport.ScrollBar),
		vscroll.WithScrollAuditTime(c.Viewport.AuditTime.Duration),
	}
}
