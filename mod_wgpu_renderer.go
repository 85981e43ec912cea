package shadowpong

import (
	"errors"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/gekko3d/shadowpong/lightrt/gpu"
)

// WgpuRendererModule runs the lighting passes on the GPU and presents to the
// shared window.
type WgpuRendererModule struct {
	Light core.LightConfig
}

type wgpuState struct {
	ctx      *gpu.Context
	renderer *gpu.Renderer
	width    int
	height   int
	dropped  int
}

func (mod WgpuRendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererWGPU)

	window, ok := Resource[WindowState](app)
	if !ok {
		panic("WgpuRendererModule requires a window; install it with UseRenderer")
	}

	ctx, err := gpu.NewContext(window.Window())
	if err != nil {
		app.Logger().Errorf("Failed to create GPU context: %v", err)
		panic(err)
	}

	opts := gpu.Options{}
	if lighting, ok := Resource[Lighting](app); ok {
		opts.Text = lighting.Text
	}
	server, _ := Resource[AssetServer](app)
	bg, _ := Resource[Background](app)
	opts.Background = BackgroundImage(server, bg)

	renderer, err := gpu.NewRenderer(ctx, mod.Light, opts)
	if err != nil {
		ctx.Release()
		app.Logger().Errorf("Failed to create GPU renderer: %v", err)
		panic(err)
	}

	cmd.AddResources(&wgpuState{
		ctx:      ctx,
		renderer: renderer,
		width:    int(ctx.Config.Width),
		height:   int(ctx.Config.Height),
	})

	app.UseSystem(
		System(wgpuRenderSystem).
			InStage(Render).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(wgpuReleaseSystem).
				InStage(PostRender).
				InState(OnExit(app.finalState)),
		)
	}
}

func wgpuRenderSystem(window *WindowState, frame *FrameState, state *wgpuState, cmd *Commands) {
	if window.WindowWidth != state.width || window.WindowHeight != state.height {
		if err := state.renderer.Resize(window.WindowWidth, window.WindowHeight); err != nil {
			cmd.Logger().Errorf("Renderer resize failed: %v", err)
		} else {
			state.width, state.height = window.WindowWidth, window.WindowHeight
			cmd.Logger().Debugf("Renderer resized to %dx%d", state.width, state.height)
		}
	}
	if !frame.Ready {
		return
	}

	if err := state.renderer.RenderFrame(frame.Frame); err != nil {
		state.dropped++
		if errors.Is(err, core.ErrNotReady) {
			cmd.Logger().Debugf("Frame skipped: %v", err)
			return
		}
		cmd.Logger().Errorf("Frame dropped: %v", err)
	}
}

func wgpuReleaseSystem(state *wgpuState, cmd *Commands) {
	state.renderer.Release()
	state.ctx.Release()
	cmd.Logger().Infof("GPU renderer released, %d frames dropped", state.dropped)
}
