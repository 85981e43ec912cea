package shadowpong

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyA int = iota
	KeyD
	KeyP
	KeyQ
	KeyS
	KeyW
	KeySpace
	KeyEnter
	KeyEscape
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF12
	keyCount
)

type InputModule struct{}

// Input is the keyboard state of the current frame.
type Input struct {
	Pressed [256]bool

	JustPressed  [256]bool
	JustReleased [256]bool

	// held keeps terminal keys down until the deadline; terminals report
	// presses and repeats but never releases.
	held [256]time.Time
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[Input](app); !ok {
		cmd.AddResources(&Input{})
	}
	if _, ok := Resource[WindowState](app); ok {
		app.UseSystem(
			System(inputSystem).
				InStage(PreUpdate).
				RunAlways(),
		)
	}
}

func (in *Input) beginFrame() {
	in.JustPressed = [256]bool{}
	in.JustReleased = [256]bool{}
}

func (in *Input) set(key int, down bool) {
	if down {
		if !in.Pressed[key] {
			in.JustPressed[key] = true
		}
		in.Pressed[key] = true
	} else {
		if in.Pressed[key] {
			in.JustReleased[key] = true
		}
		in.Pressed[key] = false
	}
}

// Hold presses key until the given deadline. Repeated calls extend it.
func (in *Input) Hold(key int, until time.Time) {
	if until.After(in.held[key]) {
		in.held[key] = until
	}
}

// applyHeld releases keys whose hold window has passed.
func (in *Input) applyHeld(now time.Time) {
	for key := 0; key < keyCount; key++ {
		in.set(key, now.Before(in.held[key]))
	}
}

func inputSystem(s *WindowState, input *Input) {
	input.beginFrame()

	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		switch s.windowGlfw.GetKey(glfwKey) {
		case glfw.Press, glfw.Repeat:
			input.set(key, true)
		case glfw.Release:
			input.set(key, false)
		}
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyA:      glfw.KeyA,
	KeyD:      glfw.KeyD,
	KeyP:      glfw.KeyP,
	KeyQ:      glfw.KeyQ,
	KeyS:      glfw.KeyS,
	KeyW:      glfw.KeyW,
	KeySpace:  glfw.KeySpace,
	KeyEnter:  glfw.KeyEnter,
	KeyEscape: glfw.KeyEscape,
	KeyRight:  glfw.KeyRight,
	KeyLeft:   glfw.KeyLeft,
	KeyDown:   glfw.KeyDown,
	KeyUp:     glfw.KeyUp,
	KeyF12:    glfw.KeyF12,
}
