package shadowpong

import (
	"testing"
	"time"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLightingApp(t *testing.T) *App {
	t.Helper()
	cfg := DefaultGameConfig()
	cfg.Seed = 5
	cfg.OpponentAI = false
	return NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModules(
			TimeModule{FixedStep: 10 * time.Millisecond},
			InputModule{},
			GameModule{Config: cfg, Width: 800, Height: 600},
			LightingModule{Light: core.DefaultLightConfig()},
		).
		Build()
}

func TestLighting_FollowsBall(t *testing.T) {
	app := newLightingApp(t)
	game, _ := Resource[GameState](app)
	lighting, _ := Resource[Lighting](app)

	app.Step()

	r := game.BallRadius()
	light := lighting.Controller.Snapshot()
	assert.InDelta(t, (game.Ball.Pos.X()-r)/800, light.Pos.X(), 1e-6)
	assert.InDelta(t, 1-(game.Ball.Pos.Y()-r)/600, light.Pos.Y(), 1e-6)
	assert.Equal(t, mgl32.Vec2{800, 600}, light.ScreenSize)
	assert.Equal(t, core.Glow(core.DefaultGlowFactor, core.DefaultGlowRate, 1), light.Glow)
}

func TestLighting_PaddleHitRecolorsLight(t *testing.T) {
	app := newLightingApp(t)
	game, _ := Resource[GameState](app)
	lighting, _ := Resource[Lighting](app)

	assert.Equal(t, mgl32.Vec4{1, 0, 1, 1}, lighting.Controller.Snapshot().LightColor)

	game.Ball.Pos = mgl32.Vec2{22, 300}
	game.Ball.Vel = mgl32.Vec2{-270, 0}
	app.Step()

	assert.Equal(t, colorLeft, lighting.Controller.Snapshot().LightColor)
	assert.Equal(t, colorLeft, game.Ball.Color)

	frame, _ := Resource[FrameState](app)
	assert.True(t, frame.Ready)
	assert.Equal(t, colorLeft, frame.Frame.Light.LightColor)
}

func TestLighting_FollowsScreenResize(t *testing.T) {
	app := newLightingApp(t)
	screen, _ := Resource[Screen](app)
	game, _ := Resource[GameState](app)
	lighting, _ := Resource[Lighting](app)

	screen.Width, screen.Height = 640, 480
	app.Step()

	assert.Equal(t, mgl32.Vec2{640, 480}, game.Field)
	assert.Equal(t, mgl32.Vec2{640, 480}, lighting.Controller.Snapshot().ScreenSize)
}

func TestBuildFrame(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.Seed = 9
	game, err := NewGameState(cfg, 800, 600)
	require.NoError(t, err)
	game.Score = [2]int{3, 1}
	game.Ball.Pos = mgl32.Vec2{200, 150}

	text := core.DefaultTextRenderer()
	params := core.LightParams{Strength: 1, ScreenSize: game.Field}
	frame := BuildFrame(game, params, text)

	assert.Equal(t, mgl32.Vec2{800, 600}, frame.Size)
	assert.Equal(t, params, frame.Light)

	require.Len(t, frame.Occluders, 2)
	assert.Equal(t, core.Rect(mgl32.Vec2{15, 300}, mgl32.Vec2{10, 100}, colorLeft), frame.Occluders[0])
	assert.Equal(t, core.Rect(mgl32.Vec2{785, 300}, mgl32.Vec2{10, 100}, colorRight), frame.Occluders[1])

	require.Len(t, frame.Texts, 1)
	score := frame.Texts[0]
	assert.Equal(t, "3        1", score.Text)
	w, h := text.MeasureText(score.Text, cfg.ScoreScale)
	assert.InDelta(t, 400, score.Position.X()+w*0.5, 1e-3)
	assert.InDelta(t, scoreTop, score.Position.Y()+h*0.5, 1e-3)

	require.Len(t, frame.Overlay, 2)
	divider := frame.Overlay[0]
	assert.Equal(t, core.ShapeRect, divider.Kind)
	assert.Equal(t, mgl32.Vec2{400, 300}, divider.Center)
	assert.Equal(t, mgl32.Vec2{0.5, 300}, divider.HalfSize)

	ball := frame.Overlay[1]
	assert.Equal(t, core.ShapeCircle, ball.Kind)
	assert.Equal(t, mgl32.Vec2{195, 145}, ball.Center)
	assert.Equal(t, cfg.BallSize, ball.HalfSize.X())
	assert.Equal(t, float32(10), ball.HalfSize.Y())
	assert.Equal(t, colorBall, ball.Color)
}

func TestBuildFrame_NoDivider(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.DividerWidth = 0
	game, err := NewGameState(cfg, 320, 200)
	require.NoError(t, err)

	frame := BuildFrame(game, core.LightParams{}, core.DefaultTextRenderer())
	require.Len(t, frame.Overlay, 1)
	assert.Equal(t, core.ShapeCircle, frame.Overlay[0].Kind)
}
