package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GlowCap limits the additive light so it never saturates the scene.
const GlowCap float32 = 0.6

var (
	white = mgl32.Vec4{1, 1, 1, 1}
	black = mgl32.Vec4{0, 0, 0, 1}
)

// FragmentCoord is the normalized centre of pixel (x, y) of a top-down
// target, with the origin moved to the bottom-left.
func FragmentCoord(x, y, width, height int) mgl32.Vec2 {
	return mgl32.Vec2{
		(float32(x) + 0.5) / float32(width),
		1 - (float32(y)+0.5)/float32(height),
	}
}

// PolarAngle converts an offset from the light into a normalized angle in
// [0,1). Negative atan2 results wrap by adding one turn.
func PolarAngle(rel mgl32.Vec2) float32 {
	ox := float32(math.Atan2(float64(rel.Y()), float64(rel.X())) / (2 * math.Pi))
	if ox < 0 {
		ox += 1.0
	}
	return ox
}

// LightSample is what both mask passes know about one fragment.
type LightSample struct {
	// Lit is true when the fragment is closer to the light than the
	// nearest occluder in its direction.
	Lit bool
	// Falloff is (strength+glow)/d², unclamped, with d aspect-corrected.
	Falloff float32
}

// SampleLight runs the polar lookup shared by the shadow and glow passes.
func SampleLight(coord mgl32.Vec2, params LightParams, occlusion *OcclusionMap) LightSample {
	rel := coord.Sub(params.Pos)
	occl := occlusion.Sample(PolarAngle(rel)).R * 2.0
	if rel.Len() >= occl {
		return LightSample{}
	}

	g := params.ScreenSize.Mul(1 / params.ScreenSize.Y())
	d := mulElem(g, coord).Sub(mulElem(g, params.Pos)).Len()
	return LightSample{Lit: true, Falloff: falloff(params.Power(), d)}
}

// ShadowIntensity is 1 for fully shadowed fragments and drops towards 0 close
// to the light.
func ShadowIntensity(s LightSample) float32 {
	if !s.Lit {
		return 1
	}
	return 1 - mgl32.Clamp(s.Falloff, 0, 1)
}

// GlowIntensity is the additive light amount in [0, GlowCap].
func GlowIntensity(s LightSample) float32 {
	if !s.Lit {
		return 0
	}
	return mgl32.Clamp(s.Falloff, 0, GlowCap)
}

// ShadowFragment is the colour written to the shadow target.
func ShadowFragment(coord mgl32.Vec2, params LightParams, occlusion *OcclusionMap) mgl32.Vec4 {
	intensity := ShadowIntensity(SampleLight(coord, params, occlusion))
	return Mix(white, opaque(params.ShadowColor), intensity)
}

// GlowFragment is the colour written to the light target.
func GlowFragment(coord mgl32.Vec2, params LightParams, occlusion *OcclusionMap) mgl32.Vec4 {
	intensity := GlowIntensity(SampleLight(coord, params, occlusion))
	return Mix(black, opaque(params.LightColor), intensity)
}

// Mix is GLSL mix(): a + (b-a)*t.
func Mix(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

func falloff(power, d float32) float32 {
	d2 := d * d
	if d2 == 0 {
		if power > 0 {
			return float32(math.Inf(1))
		}
		return 0
	}
	return power / d2
}

func opaque(c mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{c[0], c[1], c[2], 1}
}

func mulElem(a, b mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{a[0] * b[0], a[1] * b[1]}
}
