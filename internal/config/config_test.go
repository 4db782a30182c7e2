package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayn2op/vscroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.Strategy.ItemSize)
	assert.Equal(t, vscroll.OrientationVertical, cfg.Orientation())
	assert.Equal(t, vscroll.DirectionLTR, cfg.Direction())
	assert.True(t, cfg.Viewport.ScrollBar)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "INFO", level.String())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[strategy]
item_size = 2.0
min_buffer = 4.0
max_buffer = 8.0

[viewport]
orientation = "horizontal"
rtl = true
audit_time = "16ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StrategyConfig{ItemSize: 2, MinBuffer: 4, MaxBuffer: 8}, cfg.Strategy)
	assert.Equal(t, vscroll.OrientationHorizontal, cfg.Orientation())
	assert.Equal(t, vscroll.DirectionRTL, cfg.Direction())
	assert.Equal(t, 16*time.Millisecond, cfg.Viewport.AuditTime.Duration)
	// Settings missing from the file keep their defaults.
	assert.True(t, cfg.Viewport.ScrollBar)
	assert.Equal(t, 20, cfg.Repeater.TemplateCacheSize)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", level.String())
	assert.Len(t, cfg.ViewportOptions(), 5)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{
			name:    "buffer",
			content: "[strategy]\nmin_buffer = 10.0\nmax_buffer = 5.0\n",
			target:  vscroll.ErrInvalidBuffer,
		},
		{
			name:    "item size",
			content: "[strategy]\nitem_size = 0.0\n",
			target:  vscroll.ErrInvalidItemSize,
		},
		{
			name:    "cache size",
			content: "[repeater]\ntemplate_cache_size = -1\n",
			target:  vscroll.ErrInvalidCacheSize,
		},
		{name: "orientation", content: "[viewport]\norientation = \"diagonal\"\n"},
		{name: "audit time", content: "[viewport]\naudit_time = \"soon\"\n"},
		{name: "log level", content: "log_level = \"loud\"\n"},
		{name: "syntax", content: "[strategy\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Viewport.AppendOnly = true
	cfg.Viewport.AuditTime = Duration{50 * time.Millisecond}
	cfg.Repeater.TemplateCacheSize = 5
	cfg.LogLevel = "warn"

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "config.toml", filepath.Base(DefaultPath()))
	assert.Equal(t, "vscroll", filepath.Base(filepath.Dir(DefaultPath())))
}
