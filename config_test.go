package shadowpong

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shadowpong.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, core.DefaultLightConfig(), cfg.LightConfig())
}

func TestLoadConfig_Overlay(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 1024
height = 768

[renderer]
backend = "software"
frames = 3
fixed_step = "10ms"

[light]
ray_count = 360
light_color = [0.0, 1.0, 0.0, 1.0]

[game]
autoplay = true
seed = 42
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, "Shadow Pong", cfg.Window.Title)
	assert.Equal(t, "software", cfg.Renderer.Backend)
	assert.Equal(t, 3, cfg.Renderer.Frames)
	assert.Equal(t, 10*time.Millisecond, cfg.Renderer.FixedStep.Duration)

	light := cfg.LightConfig()
	assert.Equal(t, 360, light.RayCount)
	assert.Equal(t, core.DefaultMarchSteps, light.MarchSteps)
	assert.Equal(t, mgl32.Vec4{0, 1, 0, 1}, light.LightColor)

	assert.True(t, cfg.Game.Autoplay)
	assert.Equal(t, int64(42), cfg.Game.Seed)
	assert.Equal(t, float32(600), cfg.Game.PlayerSpeed)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "[window\nwidth = 3"))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = LoadConfig(writeConfig(t, "[window]\ndepth = 3\n"))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = LoadConfig(writeConfig(t, "[light]\nray_count = 0\n"))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero width":         func(c *Config) { c.Window.Width = 0 },
		"negative height":    func(c *Config) { c.Window.Height = -1 },
		"unknown backend":    func(c *Config) { c.Renderer.Backend = "vulkan" },
		"negative frames":    func(c *Config) { c.Renderer.Frames = -1 },
		"negative workers":   func(c *Config) { c.Renderer.Workers = -2 },
		"zero march steps":   func(c *Config) { c.Light.MarchSteps = 0 },
		"zero glow rate":     func(c *Config) { c.Light.GlowRate = 0 },
		"negative glow rate": func(c *Config) { c.Light.GlowRate = -5 },
		"zero paddle":        func(c *Config) { c.Game.PaddleHeight = 0 },
		"negative padding":   func(c *Config) { c.Game.Padding = -1 },
		"zero max step":      func(c *Config) { c.Game.MaxStep = Duration{} },
		"loud audio":         func(c *Config) { c.Audio.Volume = 1.5 },
		"zero font size":     func(c *Config) { c.Assets.FontSize = 0 },
		"zero ball size":     func(c *Config) { c.Game.BallSize = 0 },
		"negative speed up":  func(c *Config) { c.Game.SpeedUp = -30 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfig)
		})
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderer.Backend = string(RendererTerminal)
	cfg.Game.Seed = 7

	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
