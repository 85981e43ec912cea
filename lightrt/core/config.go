package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultRayCount       = 620
	DefaultMarchSteps     = 1024
	DefaultAlphaThreshold = 0.8
	DefaultStrength       = 0.0005
	DefaultGlowFactor     = 0.000005
	DefaultGlowRate       = 5.0
)

// LightConfig holds the session constants of the single point light.
type LightConfig struct {
	RayCount       int
	MarchSteps     int
	AlphaThreshold float32
	Strength       float32
	GlowFactor     float32
	GlowRate       float32
	LightColor     mgl32.Vec4
	ShadowColor    mgl32.Vec4
}

func DefaultLightConfig() LightConfig {
	return LightConfig{
		RayCount:       DefaultRayCount,
		MarchSteps:     DefaultMarchSteps,
		AlphaThreshold: DefaultAlphaThreshold,
		Strength:       DefaultStrength,
		GlowFactor:     DefaultGlowFactor,
		GlowRate:       DefaultGlowRate,
		LightColor:     mgl32.Vec4{1, 0, 1, 1},
		ShadowColor:    mgl32.Vec4{0, 0, 0, 1},
	}
}

// Validate rejects values that cannot be rendered. Nothing is clamped.
func (c LightConfig) Validate() error {
	if c.RayCount <= 0 {
		return fmt.Errorf("%w: ray count must be positive, got %d", ErrInvalidConfig, c.RayCount)
	}
	if c.MarchSteps <= 0 {
		return fmt.Errorf("%w: march steps must be positive, got %d", ErrInvalidConfig, c.MarchSteps)
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold >= 1 {
		return fmt.Errorf("%w: alpha threshold must be in [0,1), got %f", ErrInvalidConfig, c.AlphaThreshold)
	}
	if c.GlowRate <= 0 || isNaN(c.GlowRate) {
		return fmt.Errorf("%w: glow rate must be positive, got %f", ErrInvalidConfig, c.GlowRate)
	}
	if c.Strength < 0 || isNaN(c.Strength) {
		return fmt.Errorf("%w: strength must be non-negative, got %f", ErrInvalidConfig, c.Strength)
	}
	for i := 0; i < 4; i++ {
		if !unit(c.LightColor[i]) || !unit(c.ShadowColor[i]) {
			return fmt.Errorf("%w: colour components must be in [0,1]", ErrInvalidConfig)
		}
	}
	return nil
}

// ValidateScreenSize rejects empty render targets.
func ValidateScreenSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: screen size must be positive, got %dx%d", ErrInvalidConfig, width, height)
	}
	return nil
}

func unit(v float32) bool {
	return v >= 0 && v <= 1
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}
