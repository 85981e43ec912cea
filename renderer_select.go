package shadowpong

import (
	"fmt"

	"github.com/gekko3d/shadowpong/lightrt/core"
)

// RendererName identifies a concrete renderer module.
type RendererName string

const (
	RendererWGPU     RendererName = "wgpu"
	RendererSoftware RendererName = "software"
	RendererTerminal RendererName = "terminal"
)

// Renderer is an alias to Module for semantic clarity in APIs.
type Renderer interface {
	Module
}

// UseRenderer installs exactly one renderer module. The wgpu renderer also
// gets the shared window.
func (app *App) UseRenderer(name RendererName, mod Renderer) *App {
	return app.UseRendererWithWindow(name, mod, 0, 0, "")
}

// UseRendererWithWindow is UseRenderer with explicit window parameters for
// the wgpu backend. Headless backends ignore them.
func (app *App) UseRendererWithWindow(name RendererName, mod Renderer, width, height int, title string) *App {
	ensureSingleRenderer(app, name)
	if name == RendererWGPU {
		if width <= 0 {
			width = 800
		}
		if height <= 0 {
			height = 600
		}
		if title == "" {
			title = "Shadow Pong"
		}
		app.UseModules(PlatformWindowModule{Width: width, Height: height, Title: title})
	}
	app.Logger().Infof("Renderer selected: %s", name)
	app.UseModules(mod)
	return app
}

// RendererFromConfig builds the renderer module named by the config.
func RendererFromConfig(cfg Config) (RendererName, Renderer, error) {
	light := cfg.LightConfig()
	name := RendererName(cfg.Renderer.Backend)

	switch name {
	case RendererWGPU:
		return name, WgpuRendererModule{Light: light}, nil
	case RendererSoftware:
		return name, SoftwareRendererModule{
			Light:    light,
			Workers:  cfg.Renderer.Workers,
			Frames:   cfg.Renderer.Frames,
			Snapshot: cfg.Renderer.Snapshot,
		}, nil
	case RendererTerminal:
		return name, TerminalModule{
			Light:    light,
			Workers:  cfg.Renderer.Workers,
			Snapshot: cfg.Renderer.Snapshot,
		}, nil
	}
	return name, nil, fmt.Errorf("%w: unknown renderer backend %q", core.ErrInvalidConfig, cfg.Renderer.Backend)
}
