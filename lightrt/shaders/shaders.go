package shaders

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/gekko3d/shadowpong/lightrt/core"
)

//go:embed occlusion.wgsl
var OcclusionWGSL string

//go:embed shadows.wgsl
var ShadowsWGSL string

//go:embed lights.wgsl
var LightsWGSL string

//go:embed blit.wgsl
var BlitWGSL string

//go:embed shape.wgsl
var ShapeWGSL string

//go:embed text.wgsl
var TextWGSL string

// Set is the validated shader source of one lighting session.
type Set struct {
	Occlusion string
	Shadows   string
	Lights    string
	Blit      string
	Shape     string
	Text      string
}

// Load specializes the occlusion shader for cfg and checks that every
// declaration of the light parameter block matches core.LightParams.
func Load(cfg core.LightConfig) (*Set, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set := &Set{
		Occlusion: Specialize(OcclusionWGSL, cfg),
		Shadows:   ShadowsWGSL,
		Lights:    LightsWGSL,
		Blit:      BlitWGSL,
		Shape:     ShapeWGSL,
		Text:      TextWGSL,
	}

	for name, src := range map[string]string{
		"occlusion": set.Occlusion,
		"shadows":   set.Shadows,
		"lights":    set.Lights,
	} {
		if err := ValidateParamBlock(name, src); err != nil {
			return nil, err
		}
	}
	if strings.Contains(set.Occlusion, "{{") {
		return nil, fmt.Errorf("%w: occlusion shader has unresolved placeholders", core.ErrResourceCreation)
	}
	return set, nil
}

// Specialize replaces the compile-time constants of the occlusion shader.
func Specialize(src string, cfg core.LightConfig) string {
	return strings.NewReplacer(
		"{{RAY_COUNT}}", floatLiteral(float64(cfg.RayCount)),
		"{{MARCH_STEPS}}", strconv.Itoa(cfg.MarchSteps),
		"{{ALPHA_THRESHOLD}}", floatLiteral(float64(cfg.AlphaThreshold)),
	).Replace(src)
}

// WGSL float literals need a decimal point.
func floatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
