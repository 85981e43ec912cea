package shadowpong

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallLight() core.LightConfig {
	light := core.DefaultLightConfig()
	light.RayCount = 64
	light.MarchSteps = 128
	return light
}

func newHeadlessApp(t *testing.T, mod SoftwareRendererModule) *App {
	t.Helper()
	game := DefaultGameConfig()
	game.Seed = 11
	game.Autoplay = true

	app := NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModules(
			TimeModule{FixedStep: time.Second / 60},
			AssetServerModule{Width: 160, Height: 120},
			InputModule{},
			GameModule{Config: game, Width: 160, Height: 120},
			LightingModule{Light: mod.Light},
		).
		Build()
	app.UseRenderer(RendererSoftware, mod)
	return app
}

func TestSoftwareRenderer_RendersAndSnapshots(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "frame.png")
	app := newHeadlessApp(t, SoftwareRendererModule{
		Light:    smallLight(),
		Workers:  2,
		Frames:   3,
		Snapshot: snapshot,
	})

	app.Run()

	out, ok := Resource[SoftwareOutput](app)
	require.True(t, ok)
	assert.Equal(t, 3, out.Rendered)
	assert.Zero(t, out.Dropped)
	assert.Equal(t, StateQuit, app.State())
	require.NotNil(t, out.Image)
	assert.Equal(t, image.Rect(0, 0, 160, 120), out.Image.Bounds())

	f, err := os.Open(snapshot)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 160, 120), img.Bounds())
}

func TestSoftwareRenderer_SnapshotKey(t *testing.T) {
	snapshot := filepath.Join(t.TempDir(), "f12.png")
	app := newHeadlessApp(t, SoftwareRendererModule{
		Light:    smallLight(),
		Workers:  1,
		Snapshot: snapshot,
	})
	input, _ := Resource[Input](app)

	app.Step()
	_, err := os.Stat(snapshot)
	assert.ErrorIs(t, err, os.ErrNotExist)

	input.set(KeyF12, true)
	app.Step()
	_, err = os.Stat(snapshot)
	assert.NoError(t, err)
	assert.False(t, app.Done())
}

func TestHeadlessApp_InvalidLightPanics(t *testing.T) {
	light := smallLight()
	light.RayCount = 0
	assert.Panics(t, func() {
		newHeadlessApp(t, SoftwareRendererModule{Light: light})
	})
}
