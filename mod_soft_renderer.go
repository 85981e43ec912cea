package shadowpong

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/gekko3d/shadowpong/lightrt/soft"
)

// SoftwareRendererModule renders every frame on the CPU without a window.
// With Frames set the app quits after that many rendered frames; the last
// composite is written to Snapshot on exit.
type SoftwareRendererModule struct {
	Light    core.LightConfig
	Workers  int
	Frames   int
	Snapshot string
}

// SoftwareOutput is the state of the software backend.
type SoftwareOutput struct {
	Pipeline *soft.Pipeline
	// Image is the last composite.
	Image    *image.RGBA
	Rendered int
	Dropped  int

	frames   int
	snapshot string
}

func (mod SoftwareRendererModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererSoftware)

	screen, ok := Resource[Screen](app)
	if !ok {
		panic("SoftwareRendererModule requires a Screen resource; install GameModule first")
	}
	pipeline, err := newSoftPipeline(app, mod.Light, mod.Workers, screen.Width, screen.Height)
	if err != nil {
		app.Logger().Errorf("Failed to create software renderer: %v", err)
		panic(err)
	}

	cmd.AddResources(&SoftwareOutput{
		Pipeline: pipeline,
		frames:   mod.Frames,
		snapshot: mod.Snapshot,
	})

	app.UseSystem(
		System(softRenderSystem).
			InStage(Render).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(softFinishSystem).
				InStage(PostRender).
				InState(OnExit(app.finalState)),
		)
	}
}

// newSoftPipeline builds a CPU pipeline fed with the score font and the
// background texture of the app, when present.
func newSoftPipeline(app *App, light core.LightConfig, workers, width, height int) (*soft.Pipeline, error) {
	opts := soft.Options{
		Width:   width,
		Height:  height,
		Workers: workers,
	}
	if lighting, ok := Resource[Lighting](app); ok {
		opts.Text = lighting.Text
	}
	server, _ := Resource[AssetServer](app)
	bg, _ := Resource[Background](app)
	opts.Background = BackgroundImage(server, bg)

	return soft.NewPipeline(light, opts)
}

func softRenderSystem(frame *FrameState, input *Input, out *SoftwareOutput, cmd *Commands) {
	if !frame.Ready {
		return
	}

	img, err := out.Pipeline.RenderFrame(frame.Frame)
	if err != nil {
		out.Dropped++
		cmd.Logger().Errorf("Frame dropped: %v", err)
		return
	}
	out.Image = img
	out.Rendered++

	if input.JustPressed[KeyF12] && out.snapshot != "" {
		if err := writePNG(out.snapshot, img); err != nil {
			cmd.Logger().Errorf("Snapshot failed: %v", err)
		} else {
			cmd.Logger().Infof("Snapshot written to %s", out.snapshot)
		}
	}

	if out.frames > 0 && out.Rendered >= out.frames {
		cmd.ChangeState(cmd.app.finalState)
	}
}

func softFinishSystem(out *SoftwareOutput, cmd *Commands) {
	defer out.Pipeline.Close()

	cmd.Logger().Infof("Software renderer: %d frames rendered, %d dropped", out.Rendered, out.Dropped)
	if out.snapshot == "" || out.Image == nil {
		return
	}
	if err := writePNG(out.snapshot, out.Image); err != nil {
		cmd.Logger().Errorf("Snapshot failed: %v", err)
		return
	}
	cmd.Logger().Infof("Snapshot written to %s", out.snapshot)
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
