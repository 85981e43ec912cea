package shadowpong

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/google/uuid"
)

type AssetId string

type TextureAsset struct {
	Image *image.RGBA
	// Source is the file the texture came from, empty for generated ones.
	Source string
}

func (t TextureAsset) Width() int  { return t.Image.Bounds().Dx() }
func (t TextureAsset) Height() int { return t.Image.Bounds().Dy() }

type AssetServer struct {
	textures map[AssetId]TextureAsset
}

func NewAssetServer() *AssetServer {
	return &AssetServer{textures: make(map[AssetId]TextureAsset)}
}

// Background names the texture drawn behind the lit scene.
type Background struct {
	Id AssetId
}

// AssetServerModule installs the asset server and the background texture.
// Without a Background path a procedural texture of Width x Height is used.
type AssetServerModule struct {
	Background string
	Width      int
	Height     int
}

func (server AssetServer) CreateTexture(img image.Image) AssetId {
	id := makeAssetId()
	server.textures[id] = TextureAsset{Image: toRGBA(img)}
	return id
}

// LoadTexture decodes a PNG or JPEG file.
func (server AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("%w: open texture: %v", core.ErrResourceCreation, err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("%w: decode texture %s: %v", core.ErrResourceCreation, filename, err)
	}
	if img.Bounds().Empty() {
		return "", fmt.Errorf("%w: texture %s (%s) is empty", core.ErrResourceCreation, filename, format)
	}

	id := makeAssetId()
	server.textures[id] = TextureAsset{Image: toRGBA(img), Source: filename}
	return id, nil
}

func (server AssetServer) Texture(id AssetId) (TextureAsset, bool) {
	t, ok := server.textures[id]
	return t, ok
}

// BackgroundImage resolves the background texture, or nil when none is set.
func BackgroundImage(server *AssetServer, bg *Background) image.Image {
	if server == nil || bg == nil {
		return nil
	}
	t, ok := server.Texture(bg.Id)
	if !ok {
		return nil
	}
	return t.Image
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer()

	var id AssetId
	if mod.Background != "" {
		var err error
		id, err = server.LoadTexture(mod.Background)
		if err != nil {
			app.Logger().Warnf("Background %s not loaded, using a generated one: %v", mod.Background, err)
		}
	}
	if id == "" {
		w, h := mod.Width, mod.Height
		if w <= 0 || h <= 0 {
			w, h = 800, 600
		}
		id = server.CreateBackgroundTexture(w, h)
	}

	cmd.AddResources(server, &Background{Id: id})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
