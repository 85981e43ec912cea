package soft

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// BlendMode selects how a source colour is combined with a target texel.
// The factors mirror the GPU blend states of the webgpu backend.
type BlendMode int

const (
	// BlendReplace writes the source unchanged.
	BlendReplace BlendMode = iota
	// BlendAlpha is src over dst with straight alpha.
	BlendAlpha
	// BlendMultiply scales dst by src and keeps dst alpha.
	BlendMultiply
	// BlendAdd adds src to dst, saturating at one, and keeps dst alpha.
	BlendAdd
)

func (m BlendMode) String() string {
	switch m {
	case BlendReplace:
		return "replace"
	case BlendAlpha:
		return "alpha"
	case BlendMultiply:
		return "multiply"
	case BlendAdd:
		return "add"
	}
	return "unknown"
}

// Target is a float RGBA render target stored top-down, row-major.
type Target struct {
	Width  int
	Height int
	Pix    []mgl32.Vec4
}

func NewTarget(width, height int) *Target {
	return &Target{
		Width:  width,
		Height: height,
		Pix:    make([]mgl32.Vec4, width*height),
	}
}

func (t *Target) Clear(c mgl32.Vec4) {
	for i := range t.Pix {
		t.Pix[i] = c
	}
}

func (t *Target) At(x, y int) mgl32.Vec4 {
	return t.Pix[y*t.Width+x]
}

func (t *Target) Set(x, y int, c mgl32.Vec4) {
	t.Pix[y*t.Width+x] = c
}

// Blend combines src into the texel at (x, y).
func (t *Target) Blend(x, y int, src mgl32.Vec4, mode BlendMode) {
	i := y*t.Width + x
	t.Pix[i] = Blend(t.Pix[i], src, mode)
}

// CompositeRows blends rows [y0, y1) of src, which must have the same size.
func (t *Target) CompositeRows(src *Target, mode BlendMode, y0, y1 int) {
	for i := y0 * t.Width; i < y1*t.Width; i++ {
		t.Pix[i] = Blend(t.Pix[i], src.Pix[i], mode)
	}
}

// CopyRows copies rows [y0, y1) of src.
func (t *Target) CopyRows(src *Target, y0, y1 int) {
	copy(t.Pix[y0*t.Width:y1*t.Width], src.Pix[y0*t.Width:y1*t.Width])
}

// Blend is one fixed-function blend operation.
func Blend(dst, src mgl32.Vec4, mode BlendMode) mgl32.Vec4 {
	switch mode {
	case BlendAlpha:
		a := src[3]
		return mgl32.Vec4{
			src[0]*a + dst[0]*(1-a),
			src[1]*a + dst[1]*(1-a),
			src[2]*a + dst[2]*(1-a),
			a + dst[3]*(1-a),
		}
	case BlendMultiply:
		return mgl32.Vec4{src[0] * dst[0], src[1] * dst[1], src[2] * dst[2], dst[3]}
	case BlendAdd:
		return mgl32.Vec4{
			mgl32.Clamp(src[0]+dst[0], 0, 1),
			mgl32.Clamp(src[1]+dst[1], 0, 1),
			mgl32.Clamp(src[2]+dst[2], 0, 1),
			dst[3],
		}
	}
	return src
}

// LoadImage converts a premultiplied image of the same size into straight
// alpha texels.
func (t *Target) LoadImage(img *image.RGBA) {
	b := img.Bounds()
	for y := 0; y < t.Height; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < t.Width; x++ {
			t.Pix[y*t.Width+x] = Straight(row[x*4], row[x*4+1], row[x*4+2], row[x*4+3])
		}
	}
}

// RGBA quantizes the target into an 8-bit image.
func (t *Target) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, t.Width, t.Height))
	for i, c := range t.Pix {
		n := ToNRGBA(c)
		a := uint16(n.A)
		img.Pix[i*4+0] = uint8(uint16(n.R) * a / 255)
		img.Pix[i*4+1] = uint8(uint16(n.G) * a / 255)
		img.Pix[i*4+2] = uint8(uint16(n.B) * a / 255)
		img.Pix[i*4+3] = n.A
	}
	return img
}

// Straight converts premultiplied 8-bit components to a straight float colour.
func Straight(r, g, b, a uint8) mgl32.Vec4 {
	if a == 0 {
		return mgl32.Vec4{}
	}
	fa := float32(a)
	return mgl32.Vec4{float32(r) / fa, float32(g) / fa, float32(b) / fa, fa / 255}
}

func ToNRGBA(c mgl32.Vec4) color.NRGBA {
	return color.NRGBA{
		R: quantize(c[0]),
		G: quantize(c[1]),
		B: quantize(c[2]),
		A: quantize(c[3]),
	}
}

func quantize(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
