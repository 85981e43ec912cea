package shadowpong

import (
	"testing"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T) *GameState {
	t.Helper()
	cfg := DefaultGameConfig()
	cfg.Seed = 1
	cfg.OpponentAI = false
	g, err := NewGameState(cfg, 800, 600)
	require.NoError(t, err)
	return g
}

func TestGameState_Initial(t *testing.T) {
	g := newTestGame(t)

	assert.Equal(t, mgl32.Vec2{15, 300}, g.Paddles[SideLeft].Pos)
	assert.Equal(t, mgl32.Vec2{785, 300}, g.Paddles[SideRight].Pos)
	assert.Equal(t, mgl32.Vec2{400, 300}, g.Ball.Pos)
	assert.Equal(t, float32(270), abs32(g.Ball.Vel.X()))
	assert.Equal(t, float32(270), abs32(g.Ball.Vel.Y()))
	assert.Equal(t, mgl32.Vec4{1, 0, 1, 1}, g.Ball.Color)
	assert.Equal(t, "0        0", g.ScoreText())

	_, err := NewGameState(DefaultGameConfig(), 0, 600)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestGameState_PaddleMovesAndClamps(t *testing.T) {
	g := newTestGame(t)
	g.Ball.Vel = mgl32.Vec2{}

	g.Step(0.1, Controls{LeftUp: true, RightDown: true}, nil)
	assert.InDelta(t, 240, g.Paddles[SideLeft].Pos.Y(), 1e-4)
	assert.InDelta(t, 360, g.Paddles[SideRight].Pos.Y(), 1e-4)

	for i := 0; i < 20; i++ {
		g.Step(0.1, Controls{LeftUp: true, RightDown: true}, nil)
	}
	assert.Equal(t, float32(50), g.Paddles[SideLeft].Pos.Y())
	assert.Equal(t, float32(550), g.Paddles[SideRight].Pos.Y())
}

func TestGameState_WallBounce(t *testing.T) {
	g := newTestGame(t)
	g.Ball.Pos = mgl32.Vec2{400, 8}
	g.Ball.Vel = mgl32.Vec2{0, -100}

	g.Step(0.1, Controls{}, nil)
	assert.Equal(t, float32(5), g.Ball.Pos.Y())
	assert.Equal(t, float32(100), g.Ball.Vel.Y())

	g.Ball.Pos = mgl32.Vec2{400, 590}
	g.Ball.Vel = mgl32.Vec2{0, 100}
	g.Step(0.1, Controls{}, nil)
	assert.Equal(t, float32(595), g.Ball.Pos.Y())
	assert.Equal(t, float32(-100), g.Ball.Vel.Y())
}

func TestGameState_PaddleHitEmitsColor(t *testing.T) {
	g := newTestGame(t)
	events := &GameEvents{}

	// left paddle spans x 10..20, y 250..350
	g.Ball.Pos = mgl32.Vec2{30, 300}
	g.Ball.Vel = mgl32.Vec2{-270, 0}
	g.Step(0.05, Controls{}, events)

	require.Len(t, events.Hits, 1)
	assert.Equal(t, PaddleHit{Side: SideLeft, Color: mgl32.Vec4{0, 0, 1, 1}}, events.Hits[0])
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, g.Ball.Color)
	assert.Equal(t, float32(30), g.Ball.Pos.X())
	assert.Equal(t, float32(300), g.Ball.Vel.X())

	events.Clear()
	g.Ball.Pos = mgl32.Vec2{770, 300}
	g.Ball.Vel = mgl32.Vec2{300, 0}
	g.Step(0.05, Controls{}, events)

	require.Len(t, events.Hits, 1)
	assert.Equal(t, SideRight, events.Hits[0].Side)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, events.Hits[0].Color)
	assert.Equal(t, float32(770), g.Ball.Pos.X())
	assert.Equal(t, float32(-330), g.Ball.Vel.X())
}

func TestGameState_MissedBallScores(t *testing.T) {
	g := newTestGame(t)
	events := &GameEvents{}

	// passes above the left paddle
	g.Paddles[SideLeft].Pos[1] = 500
	g.Ball.Pos = mgl32.Vec2{5, 100}
	g.Ball.Vel = mgl32.Vec2{-270, 0}
	g.Step(0.1, Controls{}, events)

	require.Len(t, events.Scores, 1)
	assert.Equal(t, Scored{Side: SideRight, Score: [2]int{0, 1}}, events.Scores[0])
	assert.Equal(t, mgl32.Vec2{400, 300}, g.Ball.Pos)
	assert.Equal(t, "0        1", g.ScoreText())

	g.Paddles[SideRight].Pos[1] = 500
	g.Ball.Pos = mgl32.Vec2{795, 100}
	g.Ball.Vel = mgl32.Vec2{270, 0}
	g.Step(0.1, Controls{}, events)

	require.Len(t, events.Scores, 2)
	assert.Equal(t, [2]int{1, 1}, g.Score)
}

func TestGameState_OpponentTracksBall(t *testing.T) {
	g := newTestGame(t)
	g.cfg.OpponentAI = true
	g.Ball.Pos = mgl32.Vec2{400, 100}
	g.Ball.Vel = mgl32.Vec2{}

	g.Step(0.5, Controls{}, nil)
	// 0.4 * 600 * 0.5
	assert.InDelta(t, 180, g.Paddles[SideRight].Pos.Y(), 1e-4)
	assert.Equal(t, float32(300), g.Paddles[SideLeft].Pos.Y())

	g.cfg.Autoplay = true
	g.Step(0.5, Controls{}, nil)
	assert.InDelta(t, 180, g.Paddles[SideLeft].Pos.Y(), 1e-4)
}

func TestGameState_Resize(t *testing.T) {
	g := newTestGame(t)
	g.Paddles[SideRight].Pos[1] = 550

	require.NoError(t, g.Resize(1024, 400))
	assert.Equal(t, float32(1009), g.Paddles[SideRight].Pos.X())
	assert.Equal(t, float32(350), g.Paddles[SideRight].Pos.Y())

	assert.Error(t, g.Resize(0, 0))
	assert.Equal(t, mgl32.Vec2{1024, 400}, g.Field)
}

func TestGameState_SeedIsReproducible(t *testing.T) {
	a := newTestGame(t)
	b := newTestGame(t)
	for i := 0; i < 300; i++ {
		a.Step(1.0/60, Controls{}, nil)
		b.Step(1.0/60, Controls{}, nil)
	}
	assert.Equal(t, a.Ball, b.Ball)
	assert.Equal(t, a.Score, b.Score)
}

func TestGameModule_PauseAndQuit(t *testing.T) {
	cfg := DefaultGameConfig()
	cfg.Seed = 3
	app := NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModules(TimeModule{FixedStep: 10_000_000}, InputModule{}, GameModule{Config: cfg, Width: 800, Height: 600}).
		Build()

	game, ok := Resource[GameState](app)
	require.True(t, ok)
	input, _ := Resource[Input](app)

	app.Step()
	moved := game.Ball.Pos
	assert.NotEqual(t, mgl32.Vec2{400, 300}, moved)

	input.set(KeyP, true)
	app.Step()
	input.beginFrame()
	assert.Equal(t, StatePaused, app.State())

	frozen := game.Ball.Pos
	app.Step()
	assert.Equal(t, frozen, game.Ball.Pos)

	input.set(KeyEscape, true)
	app.Step()
	assert.True(t, app.Done())
}
