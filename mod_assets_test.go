package shadowpong

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestAssetServer_LoadTexture(t *testing.T) {
	server := NewAssetServer()
	path := writeTestPNG(t, 4, 3)

	id, err := server.LoadTexture(path)
	require.NoError(t, err)

	tex, ok := server.Texture(id)
	require.True(t, ok)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 3, tex.Height())
	assert.Equal(t, path, tex.Source)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, tex.Image.RGBAAt(1, 1))
}

func TestAssetServer_LoadTextureErrors(t *testing.T) {
	server := NewAssetServer()

	_, err := server.LoadTexture(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, core.ErrResourceCreation)

	junk := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(junk, []byte("not an image"), 0o644))
	_, err = server.LoadTexture(junk)
	assert.ErrorIs(t, err, core.ErrResourceCreation)
}

func TestChecker(t *testing.T) {
	a := mgl32.Vec4{1, 1, 1, 1}
	b := mgl32.Vec4{0, 0, 0, 1}
	img := Checker(8, 8, 4, a, b)

	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	assert.Equal(t, white, img.RGBAAt(0, 0))
	assert.Equal(t, white, img.RGBAAt(3, 3))
	assert.Equal(t, black, img.RGBAAt(4, 0))
	assert.Equal(t, black, img.RGBAAt(0, 4))
	assert.Equal(t, white, img.RGBAAt(7, 7))
}

func TestVignette_DarkensCorners(t *testing.T) {
	img := Checker(64, 64, 64, mgl32.Vec4{1, 1, 1, 1}, mgl32.Vec4{1, 1, 1, 1})
	Vignette(img, 0.5)

	centre := img.RGBAAt(32, 32)
	corner := img.RGBAAt(0, 0)
	assert.Greater(t, centre.R, corner.R)
	assert.InDelta(t, 255, int(centre.R), 1)
	assert.InDelta(t, 131, int(corner.R), 2)
	assert.Equal(t, uint8(255), corner.A)
}

func TestAssetServerModule_Background(t *testing.T) {
	path := writeTestPNG(t, 2, 2)
	app := NewAppBuilder().UseModules(AssetServerModule{Background: path}).Build()

	server, ok := Resource[AssetServer](app)
	require.True(t, ok)
	bg, ok := Resource[Background](app)
	require.True(t, ok)

	img := BackgroundImage(server, bg)
	require.NotNil(t, img)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
}

func TestAssetServerModule_FallsBackToGenerated(t *testing.T) {
	app := NewAppBuilder().
		UseModules(AssetServerModule{Background: filepath.Join(t.TempDir(), "nope.png"), Width: 32, Height: 16}).
		Build()

	server, _ := Resource[AssetServer](app)
	bg, _ := Resource[Background](app)
	tex, ok := server.Texture(bg.Id)
	require.True(t, ok)
	assert.Equal(t, 32, tex.Width())
	assert.Equal(t, 16, tex.Height())
	assert.Empty(t, tex.Source)

	assert.Nil(t, BackgroundImage(server, &Background{Id: "unknown"}))
	assert.Nil(t, BackgroundImage(nil, bg))
}
