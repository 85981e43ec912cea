package core

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// LightController derives the light parameters from game state once per tick.
type LightController struct {
	params     LightParams
	field      mgl32.Vec2
	glowFactor float32
	glowRate   float32
}

func NewLightController(cfg LightConfig, width, height int) (*LightController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &LightController{
		params: LightParams{
			LightColor:  cfg.LightColor,
			ShadowColor: cfg.ShadowColor,
			Pos:         mgl32.Vec2{0.5, 0.5},
			Strength:    cfg.Strength,
		},
		glowFactor: cfg.GlowFactor,
		glowRate:   cfg.GlowRate,
	}
	if err := c.Resize(width, height); err != nil {
		return nil, err
	}
	return c, nil
}

// Resize records the new field size. The light position is recomputed on the
// next Tick.
func (c *LightController) Resize(width, height int) error {
	if err := ValidateScreenSize(width, height); err != nil {
		return fmt.Errorf("light controller: %w", err)
	}
	c.field = mgl32.Vec2{float32(width), float32(height)}
	c.params.ScreenSize = c.field
	return nil
}

// Tick updates glow from the tick counter and moves the light onto the ball.
// Game space is top-left based; the light uses a bottom-left origin.
func (c *LightController) Tick(ticks uint64, ball mgl32.Vec2, radius float32) {
	c.params.Glow = Glow(c.glowFactor, c.glowRate, ticks)
	c.params.Pos = mgl32.Vec2{
		(ball.X() - radius) / c.field.X(),
		1.0 - (ball.Y()-radius)/c.field.Y(),
	}
}

// Glow is factor*cos(ticks/rate).
func Glow(factor, rate float32, ticks uint64) float32 {
	return factor * float32(math.Cos(float64(ticks)/float64(rate)))
}

func (c *LightController) SetLightColor(color mgl32.Vec4) {
	c.params.LightColor = color
}

// Snapshot returns a copy for the render passes of one frame.
func (c *LightController) Snapshot() LightParams {
	return c.params
}
