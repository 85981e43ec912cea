package shadowpong

import (
	"fmt"
	"runtime"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Screen is the size of the playing field in logical pixels. Window backends
// keep it equal to the framebuffer; headless backends leave it as configured.
type Screen struct {
	Width  int
	Height int
}

func ensureScreen(app *App, width, height int) *Screen {
	if s, ok := Resource[Screen](app); ok {
		return s
	}
	s := &Screen{Width: width, Height: height}
	app.addResources(s)
	return s
}

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
}

// Window exposes the GLFW handle for surface creation.
func (s *WindowState) Window() *glfw.Window {
	return s.windowGlfw
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	if err := core.ValidateScreenSize(windowWidth, windowHeight); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("%w: glfw init: %v", core.ErrResourceCreation, err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // no OpenGL context, wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("%w: create window: %v", core.ErrResourceCreation, err)
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
	}, nil
}

func (s *WindowState) destroy() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
		glfw.Terminate()
	}
}

// PlatformWindowModule ensures a single shared GLFW window (WindowState)
// exists. Install is idempotent.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		app.Logger().Errorf("Failed to create window: %v", err)
		panic(err)
	}
	cmd.AddResources(ws)
	ensureScreen(app, m.Width, m.Height)

	app.UseSystem(
		System(windowSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(windowDestroySystem).
				InStage(Finale).
				InState(OnExit(app.finalState)),
		)
	}
}

// windowSystem follows the framebuffer size and turns a close request into
// the final state.
func windowSystem(s *WindowState, screen *Screen, cmd *Commands) {
	if s.windowGlfw.ShouldClose() {
		cmd.ChangeState(cmd.app.finalState)
		return
	}

	w, h := s.windowGlfw.GetFramebufferSize()
	if w <= 0 || h <= 0 {
		// minimized
		return
	}
	s.WindowWidth, s.WindowHeight = w, h
	screen.Width, screen.Height = w, h
}

func windowDestroySystem(s *WindowState) {
	s.destroy()
}
