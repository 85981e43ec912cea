package shadowpong

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	StateRunning State = iota
	StatePaused
	StateQuit
)

type GameConfig struct {
	Padding      float32 `toml:"padding"`
	PaddleWidth  float32 `toml:"paddle_width"`
	PaddleHeight float32 `toml:"paddle_height"`
	BallSize     float32 `toml:"ball_size"`
	PlayerSpeed  float32 `toml:"player_speed"`
	BallSpeed    float32 `toml:"ball_speed"`
	// SpeedUp is added to the horizontal ball speed on every paddle hit.
	SpeedUp float32 `toml:"speed_up"`
	// OpponentFactor scales PlayerSpeed for the tracking paddles.
	OpponentFactor float32 `toml:"opponent_factor"`
	OpponentAI     bool    `toml:"opponent_ai"`
	// Autoplay lets the tracker drive the left paddle too.
	Autoplay     bool     `toml:"autoplay"`
	Seed         int64    `toml:"seed"`
	ScoreScale   float32  `toml:"score_scale"`
	DividerWidth float32  `toml:"divider_width"`
	MaxStep      Duration `toml:"max_step"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		Padding:        10,
		PaddleWidth:    10,
		PaddleHeight:   100,
		BallSize:       10,
		PlayerSpeed:    600,
		BallSpeed:      270,
		SpeedUp:        30,
		OpponentFactor: 0.4,
		OpponentAI:     true,
		ScoreScale:     2,
		DividerWidth:   1,
		MaxStep:        Duration{100 * time.Millisecond},
	}
}

func (c GameConfig) Validate() error {
	positive := map[string]float32{
		"paddle_width":  c.PaddleWidth,
		"paddle_height": c.PaddleHeight,
		"ball_size":     c.BallSize,
		"player_speed":  c.PlayerSpeed,
		"ball_speed":    c.BallSpeed,
		"score_scale":   c.ScoreScale,
	}
	for name, v := range positive {
		if !(v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", core.ErrInvalidConfig, name, v)
		}
	}
	if c.Padding < 0 || c.SpeedUp < 0 || c.OpponentFactor < 0 || c.DividerWidth < 0 {
		return fmt.Errorf("%w: padding, speed_up, opponent_factor and divider_width must not be negative", core.ErrInvalidConfig)
	}
	if c.MaxStep.Duration <= 0 {
		return fmt.Errorf("%w: max_step must be positive", core.ErrInvalidConfig)
	}
	return nil
}

type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

var (
	colorLeft  = mgl32.Vec4{0, 0, 1, 1}
	colorRight = mgl32.Vec4{1, 0, 0, 1}
	colorBall  = mgl32.Vec4{1, 0, 1, 1}
	colorWhite = mgl32.Vec4{1, 1, 1, 1}
)

type Paddle struct {
	// Pos is the paddle centre.
	Pos   mgl32.Vec2
	Color mgl32.Vec4
}

type Ball struct {
	Pos   mgl32.Vec2
	Vel   mgl32.Vec2
	Color mgl32.Vec4
}

// PaddleHit is emitted when the ball bounces off a paddle. Color is the
// paddle colour the ball and the light switch to.
type PaddleHit struct {
	Side  Side
	Color mgl32.Vec4
}

// Scored is emitted when the ball leaves the field; Side scored the point.
type Scored struct {
	Side  Side
	Score [2]int
}

// GameEvents holds the events of the current frame.
type GameEvents struct {
	Hits   []PaddleHit
	Scores []Scored
}

func (e *GameEvents) Clear() {
	e.Hits = e.Hits[:0]
	e.Scores = e.Scores[:0]
}

// Controls are the paddle directions requested for one step.
type Controls struct {
	LeftUp, LeftDown   bool
	RightUp, RightDown bool
}

type GameState struct {
	cfg     GameConfig
	Field   mgl32.Vec2
	Paddles [2]Paddle
	Ball    Ball
	Score   [2]int
	rnd     *rand.Rand
}

func NewGameState(cfg GameConfig, width, height int) (*GameState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := core.ValidateScreenSize(width, height); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &GameState{
		cfg:   cfg,
		Field: mgl32.Vec2{float32(width), float32(height)},
		rnd:   rand.New(rand.NewSource(seed)),
	}
	g.Paddles[SideLeft] = Paddle{Color: colorLeft}
	g.Paddles[SideRight] = Paddle{Color: colorRight}
	g.placePaddles()
	for i := range g.Paddles {
		g.Paddles[i].Pos[1] = g.Field.Y() * 0.5
	}
	g.Ball.Color = colorBall
	g.resetBall()
	return g, nil
}

func (g *GameState) Config() GameConfig {
	return g.cfg
}

func (g *GameState) BallRadius() float32 {
	return g.cfg.BallSize * 0.5
}

func (g *GameState) PaddleSize() mgl32.Vec2 {
	return mgl32.Vec2{g.cfg.PaddleWidth, g.cfg.PaddleHeight}
}

// Resize moves the right paddle to the new edge and keeps everything inside
// the field.
func (g *GameState) Resize(width, height int) error {
	if err := core.ValidateScreenSize(width, height); err != nil {
		return err
	}
	g.Field = mgl32.Vec2{float32(width), float32(height)}
	g.placePaddles()
	for i := range g.Paddles {
		g.clampPaddle(&g.Paddles[i])
	}
	return nil
}

func (g *GameState) placePaddles() {
	half := g.cfg.PaddleWidth * 0.5
	g.Paddles[SideLeft].Pos[0] = half + g.cfg.Padding
	g.Paddles[SideRight].Pos[0] = g.Field.X() - half - g.cfg.Padding
}

func (g *GameState) clampPaddle(p *Paddle) {
	half := g.cfg.PaddleHeight * 0.5
	p.Pos[1] = clamp(p.Pos.Y(), half, g.Field.Y()-half)
}

// resetBall centres the ball with a random diagonal velocity.
func (g *GameState) resetBall() {
	g.Ball.Pos = g.Field.Mul(0.5)
	vx, vy := g.cfg.BallSpeed, g.cfg.BallSpeed
	if g.rnd.Intn(2) == 0 {
		vx = -vx
	}
	if g.rnd.Intn(2) == 0 {
		vy = -vy
	}
	g.Ball.Vel = mgl32.Vec2{vx, vy}
}

// Step advances the simulation by dt seconds and appends what happened to
// events.
func (g *GameState) Step(dt float32, in Controls, events *GameEvents) {
	g.movePaddle(&g.Paddles[SideLeft], in.LeftUp, in.LeftDown, dt)
	g.movePaddle(&g.Paddles[SideRight], in.RightUp, in.RightDown, dt)

	g.Ball.Pos = g.Ball.Pos.Add(g.Ball.Vel.Mul(dt))

	if g.Ball.Pos.X() < 0 {
		g.score(SideRight, events)
	}
	if g.Ball.Pos.X() > g.Field.X() {
		g.score(SideLeft, events)
	}

	r := g.BallRadius()
	if g.Ball.Pos.Y() < r {
		g.Ball.Pos[1] = r
		g.Ball.Vel[1] = abs32(g.Ball.Vel.Y())
	} else if g.Ball.Pos.Y() > g.Field.Y()-r {
		g.Ball.Pos[1] = g.Field.Y() - r
		g.Ball.Vel[1] = -abs32(g.Ball.Vel.Y())
	}

	if g.cfg.OpponentAI {
		g.track(&g.Paddles[SideRight], dt)
	}
	if g.cfg.Autoplay {
		g.track(&g.Paddles[SideLeft], dt)
	}

	if g.intersects(g.Paddles[SideLeft]) {
		g.Ball.Pos[0] = g.cfg.PaddleWidth*2 + g.cfg.Padding
		g.Ball.Vel[0] = abs32(g.Ball.Vel.X()) + g.cfg.SpeedUp
		g.hit(SideLeft, events)
	}
	if g.intersects(g.Paddles[SideRight]) {
		g.Ball.Pos[0] = g.Field.X() - g.cfg.PaddleWidth*2 - g.cfg.Padding
		g.Ball.Vel[0] = -abs32(g.Ball.Vel.X()) - g.cfg.SpeedUp
		g.hit(SideRight, events)
	}
}

func (g *GameState) movePaddle(p *Paddle, up, down bool, dt float32) {
	if up {
		p.Pos[1] -= g.cfg.PlayerSpeed * dt
	}
	if down {
		p.Pos[1] += g.cfg.PlayerSpeed * dt
	}
	g.clampPaddle(p)
}

func (g *GameState) track(p *Paddle, dt float32) {
	speed := g.cfg.PlayerSpeed * g.cfg.OpponentFactor * dt
	if g.Ball.Pos.Y() < p.Pos.Y() {
		p.Pos[1] -= speed
	} else {
		p.Pos[1] += speed
	}
	g.clampPaddle(p)
}

func (g *GameState) intersects(p Paddle) bool {
	r := g.BallRadius()
	hw, hh := g.cfg.PaddleWidth*0.5, g.cfg.PaddleHeight*0.5
	b := g.Ball.Pos
	return b.X()-r < p.Pos.X()+hw &&
		b.X()+r > p.Pos.X()-hw &&
		b.Y()-r < p.Pos.Y()+hh &&
		b.Y()+r > p.Pos.Y()-hh
}

func (g *GameState) hit(side Side, events *GameEvents) {
	color := g.Paddles[side].Color
	g.Ball.Color = color
	if events != nil {
		events.Hits = append(events.Hits, PaddleHit{Side: side, Color: color})
	}
}

func (g *GameState) score(side Side, events *GameEvents) {
	g.Score[side]++
	g.resetBall()
	if events != nil {
		events.Scores = append(events.Scores, Scored{Side: side, Score: g.Score})
	}
}

// ScoreText is the score line drawn at the top of the field.
func (g *GameState) ScoreText() string {
	return fmt.Sprintf("%d        %d", g.Score[SideLeft], g.Score[SideRight])
}

// GameModule installs the game state and its systems. It needs a stateful
// app using StateRunning..StateQuit.
type GameModule struct {
	Config GameConfig
	Width  int
	Height int
}

func (mod GameModule) Install(app *App, cmd *Commands) {
	game, err := NewGameState(mod.Config, mod.Width, mod.Height)
	if err != nil {
		app.Logger().Errorf("Failed to create game: %v", err)
		panic(err)
	}
	if _, ok := Resource[Input](app); !ok {
		cmd.AddResources(&Input{})
	}
	ensureScreen(app, mod.Width, mod.Height)
	cmd.AddResources(game, &GameEvents{})

	app.UseSystem(
		System(gameEventsClearSystem).
			InStage(Prelude).
			RunAlways(),
	)
	app.UseSystem(
		System(gameResizeSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(gameControlSystem).
			InStage(Update).
			RunAlways(),
	)
	app.UseSystem(
		System(gameSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(gameStartSystem).
			InStage(Update).
			InState(OnEnter(StateRunning)),
	)
}

func gameEventsClearSystem(events *GameEvents) {
	events.Clear()
}

func gameResizeSystem(screen *Screen, game *GameState) {
	if int(game.Field.X()) == screen.Width && int(game.Field.Y()) == screen.Height {
		return
	}
	// zero sizes are a minimized window; keep the old field
	_ = game.Resize(screen.Width, screen.Height)
}

// gameControlSystem handles quit and pause in every state.
func gameControlSystem(input *Input, cmd *Commands) {
	if input.JustPressed[KeyEscape] || input.JustPressed[KeyQ] {
		cmd.ChangeState(StateQuit)
		return
	}
	if input.JustPressed[KeyP] {
		switch cmd.State() {
		case StateRunning:
			cmd.ChangeState(StatePaused)
		case StatePaused:
			cmd.ChangeState(StateRunning)
		}
	}
}

func gameStartSystem(game *GameState, cmd *Commands) {
	cmd.Logger().Infof("Game running, score %s", game.ScoreText())
}

func gameSystem(t *Time, input *Input, game *GameState, events *GameEvents) {
	dt := t.Dt
	if limit := game.cfg.MaxStep.Duration; dt > limit {
		dt = limit
	}
	game.Step(float32(dt.Seconds()), Controls{
		LeftUp:    input.Pressed[KeyW],
		LeftDown:  input.Pressed[KeyS],
		RightUp:   input.Pressed[KeyUp],
		RightDown: input.Pressed[KeyDown],
	}, events)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
