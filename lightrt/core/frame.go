package core

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

type ShapeKind uint32

const (
	ShapeRect   ShapeKind = 0
	ShapeCircle ShapeKind = 1
)

// Shape is a filled rectangle or circle in logical pixels (top-left origin).
// For circles HalfSize.X() is the radius.
type Shape struct {
	Kind     ShapeKind
	Center   mgl32.Vec2
	HalfSize mgl32.Vec2
	Color    mgl32.Vec4
}

func Rect(center, size mgl32.Vec2, color mgl32.Vec4) Shape {
	return Shape{Kind: ShapeRect, Center: center, HalfSize: size.Mul(0.5), Color: color}
}

func Circle(center mgl32.Vec2, radius float32, color mgl32.Vec4) Shape {
	return Shape{Kind: ShapeCircle, Center: center, HalfSize: mgl32.Vec2{radius, radius}, Color: color}
}

// Bounds is the pixel rectangle covered by the shape after scaling.
func (s Shape) Bounds(scale mgl32.Vec2) image.Rectangle {
	min := mulElem(s.Center.Sub(s.HalfSize), scale)
	max := mulElem(s.Center.Add(s.HalfSize), scale)
	return image.Rect(int(min.X()+0.5), int(min.Y()+0.5), int(max.X()+0.5), int(max.Y()+0.5))
}

// Covers reports whether the logical point p lies inside the shape.
func (s Shape) Covers(p mgl32.Vec2) bool {
	d := p.Sub(s.Center)
	if s.Kind == ShapeCircle {
		r := s.HalfSize.X()
		return d.Dot(d) <= r*r
	}
	return abs(d.X()) <= s.HalfSize.X() && abs(d.Y()) <= s.HalfSize.Y()
}

// Frame is everything the renderers need for one presented image.
type Frame struct {
	// Size is the logical field size the shapes are expressed in.
	Size mgl32.Vec2
	// Light is a per-frame copy; renderers overwrite ScreenSize with their
	// own target size.
	Light LightParams
	// Occluders are drawn into the foreground layer and cast shadows.
	Occluders []Shape
	// Texts are drawn into the foreground layer too.
	Texts []TextItem
	// Overlay is drawn last and never casts or receives shadows.
	Overlay []Shape
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
