package gpu

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeInstanceLayout(t *testing.T) {
	// offsets must match the vertex attributes of the shape pipeline
	assert.Equal(t, uintptr(48), unsafe.Sizeof(ShapeInstance{}))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(ShapeInstance{}.HalfSize))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(ShapeInstance{}.Color))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(ShapeInstance{}.Kind))
	assert.Equal(t, uintptr(16), unsafe.Sizeof(ShapeParams{}))
}

func TestPackShapes(t *testing.T) {
	shapes := []core.Shape{
		core.Rect(mgl32.Vec2{10, 50}, mgl32.Vec2{10, 100}, mgl32.Vec4{0, 0, 1, 1}),
		core.Circle(mgl32.Vec2{400, 300}, 5, mgl32.Vec4{1, 1, 1, 1}),
	}
	packed := PackShapes(shapes)
	require.Len(t, packed, 2)

	assert.Equal(t, [2]float32{5, 50}, packed[0].HalfSize)
	assert.Equal(t, uint32(core.ShapeRect), packed[0].Kind)
	assert.Equal(t, uint32(core.ShapeCircle), packed[1].Kind)
	assert.Equal(t, [2]float32{5, 5}, packed[1].HalfSize)

	raw := bytesOf(packed)
	require.Len(t, raw, 96)
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])) }
	assert.Equal(t, float32(400), f(48))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(raw[48+32:]))

	assert.Nil(t, bytesOf([]ShapeInstance{}))
}

func TestCheckRayCount(t *testing.T) {
	assert.NoError(t, CheckRayCount(core.DefaultRayCount, 8192))
	assert.NoError(t, CheckRayCount(8192, 8192))
	assert.ErrorIs(t, CheckRayCount(8193, 8192), core.ErrInvalidConfig)
	assert.ErrorIs(t, CheckRayCount(0, 8192), core.ErrInvalidConfig)
}

func TestBlendStates(t *testing.T) {
	assert.Equal(t, wgpu.BlendFactorDst, BlendMultiply.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorZero, BlendMultiply.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorOne, BlendMultiply.Alpha.DstFactor)

	assert.Equal(t, wgpu.BlendFactorOne, BlendAdditive.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, BlendAdditive.Color.DstFactor)

	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, BlendPremultiplied.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, BlendAlpha.Color.SrcFactor)
}
