package shadowpong

import (
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/gekko3d/shadowpong/lightrt/soft"
)

// upperHalf shows the upper pixel as foreground and the lower as background,
// giving two square-ish pixels per cell.
const upperHalf = '▀'

const defaultKeyHold = 200 * time.Millisecond

// TerminalModule shows the software composite in a truecolour terminal and
// reads the keyboard from it.
type TerminalModule struct {
	Light    core.LightConfig
	Workers  int
	Snapshot string
	// KeyHold is how long a key counts as pressed after its last event.
	KeyHold time.Duration
}

type terminalState struct {
	screen   tcell.Screen
	pipeline *soft.Pipeline
	events   chan tcell.Event
	quit     chan struct{}
	hold     time.Duration
	snapshot string
}

func (mod TerminalModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererTerminal)

	screen, err := tcell.NewScreen()
	if err != nil {
		panic(fmt.Errorf("%w: terminal: %v", core.ErrResourceCreation, err))
	}
	if err := screen.Init(); err != nil {
		panic(fmt.Errorf("%w: terminal init: %v", core.ErrResourceCreation, err))
	}
	screen.HideCursor()
	screen.Clear()

	cols, rows := screen.Size()
	pipeline, err := newSoftPipeline(app, mod.Light, mod.Workers, cols, rows*2)
	if err != nil {
		screen.Fini()
		app.Logger().Errorf("Failed to create terminal renderer: %v", err)
		panic(err)
	}

	hold := mod.KeyHold
	if hold <= 0 {
		hold = defaultKeyHold
	}
	term := &terminalState{
		screen:   screen,
		pipeline: pipeline,
		events:   make(chan tcell.Event, 100),
		quit:     make(chan struct{}),
		hold:     hold,
		snapshot: mod.Snapshot,
	}
	go term.pollEvents()

	if _, ok := Resource[Input](app); !ok {
		cmd.AddResources(&Input{})
	}
	cmd.AddResources(term)

	app.UseSystem(
		System(terminalInputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(terminalRenderSystem).
			InStage(Render).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(terminalFinishSystem).
				InStage(PostRender).
				InState(OnExit(app.finalState)),
		)
	}
}

// pollEvents forwards terminal events until the screen is finalized.
func (term *terminalState) pollEvents() {
	for {
		ev := term.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case term.events <- ev:
		case <-term.quit:
			return
		}
	}
}

func terminalKey(ev *tcell.EventKey) (int, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyEscape, true
	case tcell.KeyUp:
		return KeyUp, true
	case tcell.KeyDown:
		return KeyDown, true
	case tcell.KeyLeft:
		return KeyLeft, true
	case tcell.KeyRight:
		return KeyRight, true
	case tcell.KeyEnter:
		return KeyEnter, true
	case tcell.KeyF12:
		return KeyF12, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return KeyW, true
		case 's', 'S':
			return KeyS, true
		case 'a', 'A':
			return KeyA, true
		case 'd', 'D':
			return KeyD, true
		case 'p', 'P':
			return KeyP, true
		case 'q', 'Q':
			return KeyQ, true
		case ' ':
			return KeySpace, true
		}
	}
	return 0, false
}

func terminalInputSystem(term *terminalState, input *Input, cmd *Commands) {
	input.beginFrame()
	now := time.Now()

	for {
		select {
		case ev := <-term.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if key, ok := terminalKey(ev); ok {
					input.Hold(key, now.Add(term.hold))
				}
			case *tcell.EventResize:
				term.screen.Sync()
				cols, rows := term.screen.Size()
				if err := term.pipeline.Resize(cols, rows*2); err != nil {
					cmd.Logger().Warnf("Terminal resize: %v", err)
				}
			}
		default:
			input.applyHeld(now)
			return
		}
	}
}

func terminalRenderSystem(frame *FrameState, term *terminalState, input *Input, cmd *Commands) {
	if !frame.Ready {
		return
	}
	img, err := term.pipeline.RenderFrame(frame.Frame)
	if err != nil {
		cmd.Logger().Errorf("Frame dropped: %v", err)
		return
	}
	term.draw(img)

	if input.JustPressed[KeyF12] && term.snapshot != "" {
		if err := writePNG(term.snapshot, img); err != nil {
			cmd.Logger().Errorf("Snapshot failed: %v", err)
		}
	}
}

func (term *terminalState) draw(img *image.RGBA) {
	cols, rows := term.screen.Size()
	b := img.Bounds()
	for cy := 0; cy < rows && 2*cy < b.Dy(); cy++ {
		for cx := 0; cx < cols && cx < b.Dx(); cx++ {
			top := img.RGBAAt(cx, 2*cy)
			bottom := top
			if 2*cy+1 < b.Dy() {
				bottom = img.RGBAAt(cx, 2*cy+1)
			}
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			term.screen.SetContent(cx, cy, upperHalf, nil, style)
		}
	}
	term.screen.Show()
}

func terminalFinishSystem(term *terminalState) {
	close(term.quit)
	term.screen.Fini()
	term.pipeline.Close()
}
