package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeInstance matches the WGSL ShapeInstance attributes.
type ShapeInstance struct {
	Center   [2]float32
	HalfSize [2]float32
	Color    [4]float32
	Kind     uint32
	_        [3]uint32
}

// ShapeParams matches the WGSL ShapeParams uniform.
type ShapeParams struct {
	Field [2]float32
	_     [2]float32
}

func PackShapes(shapes []core.Shape) []ShapeInstance {
	out := make([]ShapeInstance, len(shapes))
	for i, s := range shapes {
		out[i] = ShapeInstance{
			Center:   s.Center,
			HalfSize: s.HalfSize,
			Color:    s.Color,
			Kind:     uint32(s.Kind),
		}
	}
	return out
}

func bytesOf[T any](items []T) []byte {
	if len(items) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&items[0])), len(items)*int(unsafe.Sizeof(zero)))
}

func shapeParamsBytes(field mgl32.Vec2) []byte {
	p := []ShapeParams{{Field: field}}
	return bytesOf(p)
}

// CheckRayCount rejects occlusion maps wider than the device allows.
func CheckRayCount(rayCount int, maxTextureDimension uint32) error {
	if rayCount <= 0 || uint64(rayCount) > uint64(maxTextureDimension) {
		return fmt.Errorf("%w: ray count %d exceeds the device texture limit %d",
			core.ErrInvalidConfig, rayCount, maxTextureDimension)
	}
	return nil
}
