package shadowpong

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSingleRenderer(t *testing.T) {
	app := NewAppBuilder().Build()

	ensureSingleRenderer(app, RendererSoftware)
	assert.NotPanics(t, func() { ensureSingleRenderer(app, RendererSoftware) })

	tag, ok := Resource[RendererTag](app)
	require.True(t, ok)
	assert.Equal(t, RendererSoftware, tag.Name)

	assert.PanicsWithValue(t, "Multiple renderers installed: software and terminal", func() {
		ensureSingleRenderer(app, RendererTerminal)
	})
	assert.Panics(t, func() { ensureSingleRenderer(nil, RendererWGPU) })
}

func TestRendererFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Renderer.Backend = "software"
	cfg.Renderer.Frames = 12
	cfg.Renderer.Workers = 3

	name, mod, err := RendererFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, RendererSoftware, name)
	soft, ok := mod.(SoftwareRendererModule)
	require.True(t, ok)
	assert.Equal(t, 12, soft.Frames)
	assert.Equal(t, 3, soft.Workers)
	assert.Equal(t, cfg.LightConfig(), soft.Light)

	cfg.Renderer.Backend = "terminal"
	name, mod, err = RendererFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, RendererTerminal, name)
	assert.IsType(t, TerminalModule{}, mod)

	cfg.Renderer.Backend = "wgpu"
	_, mod, err = RendererFromConfig(cfg)
	require.NoError(t, err)
	assert.IsType(t, WgpuRendererModule{}, mod)

	cfg.Renderer.Backend = "opengl"
	_, _, err = RendererFromConfig(cfg)
	assert.Error(t, err)
}
