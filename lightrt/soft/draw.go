package soft

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// DrawShapes rasterizes shapes given in logical pixels into dst, scaled to
// the pixel size of dst.
func DrawShapes(dst *image.RGBA, shapes []core.Shape, scale mgl32.Vec2) {
	for _, s := range shapes {
		src := image.NewUniform(ToNRGBA(s.Color))
		r := s.Bounds(scale).Intersect(dst.Bounds())
		if r.Empty() {
			continue
		}

		switch s.Kind {
		case core.ShapeCircle:
			mask := &ellipseMask{
				center: mgl32.Vec2{s.Center.X() * scale.X(), s.Center.Y() * scale.Y()},
				radius: mgl32.Vec2{s.HalfSize.X() * scale.X(), s.HalfSize.X() * scale.Y()},
			}
			xdraw.DrawMask(dst, r, src, image.Point{}, mask, r.Min, xdraw.Over)
		default:
			xdraw.Draw(dst, r, src, image.Point{}, xdraw.Over)
		}
	}
}

// ellipseMask is opaque where the pixel centre lies inside the ellipse.
type ellipseMask struct {
	center mgl32.Vec2
	radius mgl32.Vec2
}

func (m *ellipseMask) ColorModel() color.Model {
	return color.AlphaModel
}

func (m *ellipseMask) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(m.center.X()-m.radius.X()))),
		int(math.Floor(float64(m.center.Y()-m.radius.Y()))),
		int(math.Ceil(float64(m.center.X()+m.radius.X()))),
		int(math.Ceil(float64(m.center.Y()+m.radius.Y()))),
	)
}

func (m *ellipseMask) At(x, y int) color.Color {
	dx := (float32(x) + 0.5 - m.center.X()) / m.radius.X()
	dy := (float32(y) + 0.5 - m.center.Y()) / m.radius.Y()
	if dx*dx+dy*dy <= 1 {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

// DrawTexts renders text items with the renderer's face at its native size
// and scales the result onto dst.
func DrawTexts(dst *image.RGBA, tr *core.TextRenderer, items []core.TextItem, scale mgl32.Vec2) {
	if tr == nil {
		return
	}
	metrics := tr.Face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()

	for _, item := range items {
		w, h := tr.MeasureText(item.Text, 1)
		if w <= 0 || h <= 0 || item.Scale <= 0 {
			continue
		}

		glyphs := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(float64(w))), int(math.Ceil(float64(h)))))
		d := font.Drawer{
			Dst:  glyphs,
			Src:  image.NewUniform(ToNRGBA(item.Color)),
			Face: tr.Face,
		}
		for i, line := range strings.Split(item.Text, "\n") {
			d.Dot = fixed.P(0, ascent+i*lineHeight)
			d.DrawString(line)
		}

		min := mgl32.Vec2{item.Position.X() * scale.X(), item.Position.Y() * scale.Y()}
		size := mgl32.Vec2{w * item.Scale * scale.X(), h * item.Scale * scale.Y()}
		dr := image.Rect(
			int(min.X()+0.5), int(min.Y()+0.5),
			int(min.X()+size.X()+0.5), int(min.Y()+size.Y()+0.5),
		)
		xdraw.NearestNeighbor.Scale(dst, dr, glyphs, glyphs.Bounds(), xdraw.Over, nil)
	}
}

// ScaleBackground resamples img to width x height.
func ScaleBackground(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
