package core

import (
	"fmt"
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// NoHit is the primary-channel distance of a ray that found no occluder.
const NoHit float32 = 1.0

// OccluderLayer exposes the opacity of the foreground layer.
// Coordinates are normalized with the origin at the bottom-left.
type OccluderLayer interface {
	Alpha(p mgl32.Vec2) float32
}

// RGBALayer reads opacity from a premultiplied RGBA image stored top-down.
type RGBALayer struct {
	Img *image.RGBA
}

func (l RGBALayer) Alpha(p mgl32.Vec2) float32 {
	b := l.Img.Bounds()
	x, y := TexelIndex(p, b.Dx(), b.Dy())
	return float32(l.Img.Pix[l.Img.PixOffset(b.Min.X+x, b.Min.Y+y)+3]) / 255
}

// TexelIndex maps a bottom-left normalized coordinate to a top-down texel.
func TexelIndex(p mgl32.Vec2, width, height int) (int, int) {
	x := int(math.Floor(float64(p.X() * float32(width))))
	y := int(math.Floor(float64((1 - p.Y()) * float32(height))))
	return clampInt(x, 0, width-1), clampInt(y, 0, height-1)
}

// Texel is one entry of the occlusion map. R holds the distance (or NoHit);
// G and B repeat it for hits and are zero when nothing was hit.
type Texel struct {
	R, G, B float32
}

// Hit reports whether the ray found an occluder.
func (t Texel) Hit() bool {
	return t.R != NoHit
}

// OcclusionMap is the 1D angular distance map of a single frame.
type OcclusionMap struct {
	Texels []Texel
}

func NewOcclusionMap(rayCount int) *OcclusionMap {
	return &OcclusionMap{Texels: make([]Texel, rayCount)}
}

func (m *OcclusionMap) Len() int {
	return len(m.Texels)
}

// Bucket returns the texel index for a normalized angle in [0,1).
func (m *OcclusionMap) Bucket(ox float32) int {
	n := len(m.Texels)
	i := int(math.Floor(float64(ox * float32(n))))
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Sample is a nearest-neighbour lookup by normalized angle.
func (m *OcclusionMap) Sample(ox float32) Texel {
	return m.Texels[m.Bucket(ox)]
}

// OcclusionGenerator ray-marches the occluder layer around the light.
type OcclusionGenerator struct {
	rayCount  int
	steps     int
	threshold float32
	dirs      []mgl32.Vec2
}

func NewOcclusionGenerator(cfg LightConfig) (*OcclusionGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &OcclusionGenerator{
		rayCount:  cfg.RayCount,
		steps:     cfg.MarchSteps,
		threshold: cfg.AlphaThreshold,
		dirs:      make([]mgl32.Vec2, cfg.RayCount),
	}
	for i := range g.dirs {
		theta := RayAngle(i, cfg.RayCount)
		g.dirs[i] = mgl32.Vec2{float32(math.Cos(theta)), float32(math.Sin(theta))}
	}
	return g, nil
}

// RayAngle is the angle in radians of ray i.
func RayAngle(i, rayCount int) float64 {
	return float64(i) / float64(rayCount) * 2 * math.Pi
}

func (g *OcclusionGenerator) RayCount() int {
	return g.rayCount
}

// Generate fills dst with one texel per ray. dst must hold RayCount texels.
func (g *OcclusionGenerator) Generate(layer OccluderLayer, pos mgl32.Vec2, dst *OcclusionMap) error {
	if dst.Len() != g.rayCount {
		return fmt.Errorf("%w: occlusion map has %d texels, want %d", ErrFrameAborted, dst.Len(), g.rayCount)
	}
	for i := range dst.Texels {
		dst.Texels[i] = g.March(layer, pos, i)
	}
	return nil
}

// March casts ray i from pos and encodes the result.
func (g *OcclusionGenerator) March(layer OccluderLayer, pos mgl32.Vec2, i int) Texel {
	dir := g.dirs[i]
	dist := NoHit
	for k := 0; k < g.steps; k++ {
		r := float32(k) / float32(g.steps)
		p := clampUnit(pos.Add(dir.Mul(r)))
		if layer.Alpha(p) > g.threshold {
			dist = pos.Sub(p).Len() * 0.5
			break
		}
	}
	others := dist
	if dist == NoHit {
		others = 0
	}
	return Texel{R: dist, G: others, B: others}
}

func clampUnit(p mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{mgl32.Clamp(p.X(), 0, 1), mgl32.Clamp(p.Y(), 0, 1)}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
