package shaders

import (
	"strings"
	"testing"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	set, err := Load(core.DefaultLightConfig())
	require.NoError(t, err)

	assert.Contains(t, set.Occlusion, "const RAY_COUNT: f32 = 620.0;")
	assert.Contains(t, set.Occlusion, "const MARCH_STEPS: i32 = 1024;")
	assert.Contains(t, set.Occlusion, "const ALPHA_THRESHOLD: f32 = 0.8;")
	assert.NotContains(t, set.Occlusion, "{{")
}

func TestLoad_InvalidConfig(t *testing.T) {
	cfg := core.DefaultLightConfig()
	cfg.RayCount = 0
	_, err := Load(cfg)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestParamBlock_AllPassesAgree(t *testing.T) {
	for name, src := range map[string]string{
		"occlusion": OcclusionWGSL,
		"shadows":   ShadowsWGSL,
		"lights":    LightsWGSL,
	} {
		layout, err := ParseStruct(src, ParamBlockName)
		require.NoError(t, err, name)
		assert.True(t, layout.Equal(core.LightParamsLayout()), name)
	}
}

func TestParamBlock_Mismatch(t *testing.T) {
	swapped := strings.Replace(ShadowsWGSL,
		"    glow: f32,\n    strength: f32,",
		"    strength: f32,\n    glow: f32,", 1)
	require.NotEqual(t, ShadowsWGSL, swapped)

	err := ValidateParamBlock("shadows", swapped)
	assert.ErrorIs(t, err, core.ErrResourceCreation)

	widened := strings.Replace(LightsWGSL, "pos: vec2<f32>,", "pos: vec4<f32>,", 1)
	assert.ErrorIs(t, ValidateParamBlock("lights", widened), core.ErrResourceCreation)

	assert.ErrorIs(t, ValidateParamBlock("blit", BlitWGSL), core.ErrResourceCreation)
}

func TestParseStruct(t *testing.T) {
	src := `
struct Foo {
    a: f32, // first
    b: vec3<f32>,
    c: f32
};`
	layout, err := ParseStruct(src, "Foo")
	require.NoError(t, err)
	require.Len(t, layout.Fields, 3)
	assert.Equal(t, "b", layout.Fields[1].Name)
	assert.Equal(t, uint32(16), layout.Fields[1].Offset)
	assert.Equal(t, uint32(28), layout.Fields[2].Offset)

	_, err = ParseStruct("struct Foo { @align(16) a: f32 }", "Foo")
	assert.Error(t, err)
	_, err = ParseStruct(src, "Bar")
	assert.Error(t, err)
}

func TestSpecialize_FloatLiterals(t *testing.T) {
	cfg := core.DefaultLightConfig()
	cfg.RayCount = 3
	cfg.AlphaThreshold = 0.5
	out := Specialize("{{RAY_COUNT}} {{ALPHA_THRESHOLD}} {{MARCH_STEPS}}", cfg)
	assert.Equal(t, "3.0 0.5 1024", out)
}
