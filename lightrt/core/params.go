package core

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// LightParams is the uniform block shared by the occlusion, shadow and light
// shaders. Field order and the `wgsl`/`type` tags define the GPU layout; the
// shaders package checks every WGSL declaration of the block against it.
type LightParams struct {
	LightColor  mgl32.Vec4 `lightrt:"uniform" wgsl:"light_color" type:"vec4<f32>"`
	ShadowColor mgl32.Vec4 `lightrt:"uniform" wgsl:"shadow_color" type:"vec4<f32>"`
	Pos         mgl32.Vec2 `lightrt:"uniform" wgsl:"pos" type:"vec2<f32>"`
	ScreenSize  mgl32.Vec2 `lightrt:"uniform" wgsl:"screen_size" type:"vec2<f32>"`
	Glow        float32    `lightrt:"uniform" wgsl:"glow" type:"f32"`
	Strength    float32    `lightrt:"uniform" wgsl:"strength" type:"f32"`
}

// ParamField describes one member of a uniform block.
type ParamField struct {
	Name   string
	Type   string
	Offset uint32
	Size   uint32
}

// BlockLayout is the resolved byte layout of a uniform block.
type BlockLayout struct {
	Fields []ParamField
	Size   uint32
}

type wgslType struct {
	align uint32
	size  uint32
}

// uniform address space rules for the scalar/vector types the block uses
var wgslTypes = map[string]wgslType{
	"f32":       {align: 4, size: 4},
	"u32":       {align: 4, size: 4},
	"i32":       {align: 4, size: 4},
	"vec2<f32>": {align: 8, size: 8},
	"vec3<f32>": {align: 16, size: 12},
	"vec4<f32>": {align: 16, size: 16},
}

// NewBlockLayout lays out (name, type) pairs with WGSL uniform alignment.
func NewBlockLayout(names, types []string) (BlockLayout, error) {
	if len(names) != len(types) {
		return BlockLayout{}, fmt.Errorf("layout: %d names for %d types", len(names), len(types))
	}

	var layout BlockLayout
	var offset, maxAlign uint32 = 0, 4
	for i, name := range names {
		t, ok := wgslTypes[types[i]]
		if !ok {
			return BlockLayout{}, fmt.Errorf("layout: unsupported type %q for %s", types[i], name)
		}
		offset = alignUp(offset, t.align)
		layout.Fields = append(layout.Fields, ParamField{
			Name:   name,
			Type:   types[i],
			Offset: offset,
			Size:   t.size,
		})
		offset += t.size
		if t.align > maxAlign {
			maxAlign = t.align
		}
	}
	// uniform structs round up to 16
	if maxAlign < 16 {
		maxAlign = 16
	}
	layout.Size = alignUp(offset, maxAlign)
	return layout, nil
}

// lightParamsLayout is derived once from the LightParams struct tags.
var lightParamsLayout = sync.OnceValue(func() BlockLayout {
	layout, err := layoutOf(reflect.TypeOf(LightParams{}))
	if err != nil {
		// tags are static; a failure here is a programming error
		panic(err)
	}
	return layout
})

// LightParamsLayout returns the block layout of LightParams. The result is a
// copy the caller may modify.
func LightParamsLayout() BlockLayout {
	layout := lightParamsLayout()
	layout.Fields = slices.Clone(layout.Fields)
	return layout
}

func layoutOf(t reflect.Type) (BlockLayout, error) {
	var names, types []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("lightrt") != "uniform" {
			continue
		}
		names = append(names, field.Tag.Get("wgsl"))
		types = append(types, field.Tag.Get("type"))
	}
	return NewBlockLayout(names, types)
}

// Equal reports whether two layouts have identical members and size.
func (l BlockLayout) Equal(other BlockLayout) bool {
	if l.Size != other.Size || len(l.Fields) != len(other.Fields) {
		return false
	}
	for i := range l.Fields {
		if l.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Bytes packs the parameters little-endian at their WGSL offsets.
func (p LightParams) Bytes() []byte {
	layout := lightParamsLayout()
	buf := make([]byte, layout.Size)

	put := func(offset uint32, values ...float32) {
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[offset+uint32(i)*4:], math.Float32bits(v))
		}
	}

	put(layout.Fields[0].Offset, p.LightColor[:]...)
	put(layout.Fields[1].Offset, p.ShadowColor[:]...)
	put(layout.Fields[2].Offset, p.Pos[:]...)
	put(layout.Fields[3].Offset, p.ScreenSize[:]...)
	put(layout.Fields[4].Offset, p.Glow)
	put(layout.Fields[5].Offset, p.Strength)

	return buf
}

// Power is the falloff numerator shared by the shadow and glow passes.
func (p LightParams) Power() float32 {
	return p.Strength + p.Glow
}

func alignUp(v, align uint32) uint32 {
	return (v + align - 1) / align * align
}
