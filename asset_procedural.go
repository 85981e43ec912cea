package shadowpong

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	checkerLight = mgl32.Vec4{0.62, 0.60, 0.56, 1}
	checkerDark  = mgl32.Vec4{0.50, 0.48, 0.45, 1}
)

// CreateBackgroundTexture generates the default background: a checker board
// darkened towards the corners.
func (server AssetServer) CreateBackgroundTexture(width, height int) AssetId {
	img := Checker(width, height, 40, checkerLight, checkerDark)
	Vignette(img, 0.45)
	return server.CreateTexture(img)
}

// Checker fills a width x height image with cell-sized squares alternating
// between a and b, starting with a in the top-left corner.
func Checker(width, height, cell int, a, b mgl32.Vec4) *image.RGBA {
	if cell <= 0 {
		cell = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	ca, cb := rgba8(a), rgba8(b)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := ca
			if (x/cell+y/cell)%2 == 1 {
				c = cb
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// Vignette scales every pixel by 1 - strength*d², where d is the distance from
// the centre normalized so the corners are at 1.
func Vignette(img *image.RGBA, strength float32) {
	b := img.Bounds()
	centre := mgl32.Vec2{float32(b.Dx()) * 0.5, float32(b.Dy()) * 0.5}
	reach := centre.Len()
	if reach == 0 {
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := mgl32.Vec2{float32(x-b.Min.X) + 0.5, float32(y-b.Min.Y) + 0.5}
			d := p.Sub(centre).Len() / reach
			f := mgl32.Clamp(1-strength*d*d, 0, 1)

			c := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: scale8(c.R, f),
				G: scale8(c.G, f),
				B: scale8(c.B, f),
				A: c.A,
			})
		}
	}
}

func scale8(v uint8, f float32) uint8 {
	return uint8(math.Round(float64(float32(v) * f)))
}

func rgba8(c mgl32.Vec4) color.RGBA {
	q := func(v float32) uint8 {
		return uint8(math.Round(float64(mgl32.Clamp(v, 0, 1) * 255)))
	}
	return color.RGBA{R: q(c.X()), G: q(c.Y()), B: q(c.Z()), A: q(c.W())}
}
