package shadowpong

import (
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// scoreTop is the vertical centre of the score line.
const scoreTop = 20

// Lighting owns the light state derived from the game every tick.
type Lighting struct {
	Controller *core.LightController
	Text       *core.TextRenderer
}

// FrameState is the frame handed to the renderer of the current tick.
type FrameState struct {
	Frame core.Frame
	// Ready is false until the first simulation tick has been described.
	Ready bool
}

type LightingModule struct {
	Light core.LightConfig
	// Text draws the score; nil falls back to the built-in bitmap face.
	Text *core.TextRenderer
}

func (mod LightingModule) Install(app *App, cmd *Commands) {
	screen, ok := Resource[Screen](app)
	if !ok {
		panic("LightingModule requires a Screen resource; install GameModule first")
	}
	controller, err := core.NewLightController(mod.Light, screen.Width, screen.Height)
	if err != nil {
		app.Logger().Errorf("Failed to create light controller: %v", err)
		panic(err)
	}
	text := mod.Text
	if text == nil {
		text = core.DefaultTextRenderer()
	}
	cmd.AddResources(&Lighting{Controller: controller, Text: text}, &FrameState{})

	app.UseSystem(
		System(lightingSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(frameSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

// lightingSystem applies paddle hits and moves the light onto the ball.
func lightingSystem(t *Time, screen *Screen, game *GameState, events *GameEvents, lighting *Lighting, cmd *Commands) {
	c := lighting.Controller
	if p := c.Snapshot().ScreenSize; int(p.X()) != screen.Width || int(p.Y()) != screen.Height {
		if err := c.Resize(screen.Width, screen.Height); err != nil {
			cmd.Logger().Debugf("Light keeps %vx%v: %v", p.X(), p.Y(), err)
		}
	}

	for _, hit := range events.Hits {
		c.SetLightColor(hit.Color)
		cmd.Logger().Debugf("Paddle hit on the %s, light color %v", hit.Side, hit.Color)
	}
	for _, s := range events.Scores {
		cmd.Logger().Infof("Point for the %s: %d - %d", s.Side, s.Score[SideLeft], s.Score[SideRight])
	}

	c.Tick(t.Ticks, game.Ball.Pos, game.BallRadius())
}

func frameSystem(game *GameState, lighting *Lighting, frame *FrameState) {
	frame.Frame = BuildFrame(game, lighting.Controller.Snapshot(), lighting.Text)
	frame.Ready = true
}

// BuildFrame describes one frame: paddles and score cast shadows, the centre
// divider and the ball are drawn on top without taking part in the lighting.
// The ball is drawn offset by its radius so that it sits on the light.
func BuildFrame(game *GameState, light core.LightParams, text *core.TextRenderer) core.Frame {
	field := game.Field
	paddle := game.PaddleSize()
	cfg := game.Config()

	frame := core.Frame{
		Size:  field,
		Light: light,
		Occluders: []core.Shape{
			core.Rect(game.Paddles[SideLeft].Pos, paddle, game.Paddles[SideLeft].Color),
			core.Rect(game.Paddles[SideRight].Pos, paddle, game.Paddles[SideRight].Color),
		},
	}

	score := game.ScoreText()
	w, h := text.MeasureText(score, cfg.ScoreScale)
	frame.Texts = []core.TextItem{{
		Text:     score,
		Position: mgl32.Vec2{field.X()*0.5 - w*0.5, scoreTop - h*0.5},
		Scale:    cfg.ScoreScale,
		Color:    colorWhite,
	}}

	if cfg.DividerWidth > 0 {
		frame.Overlay = append(frame.Overlay,
			core.Rect(mgl32.Vec2{field.X() * 0.5, field.Y() * 0.5}, mgl32.Vec2{cfg.DividerWidth, field.Y()}, colorWhite))
	}
	// the drawn ball is BallSize in radius, centred on the light
	r := game.BallRadius()
	frame.Overlay = append(frame.Overlay,
		core.Circle(game.Ball.Pos.Sub(mgl32.Vec2{r, r}), cfg.BallSize, game.Ball.Color))
	return frame
}
