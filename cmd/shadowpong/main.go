package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/shadowpong"
	"github.com/gekko3d/shadowpong/lightrt/core"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	backend := flag.String("renderer", "", "Renderer backend: wgpu, software or terminal")
	frames := flag.Int("frames", -1, "Quit after this many frames (software renderer)")
	snapshot := flag.String("snapshot", "", "PNG written by the software renderer")
	background := flag.String("background", "", "Background image (PNG or JPEG)")
	autoplay := flag.Bool("autoplay", false, "Let the computer play the left paddle")
	seed := flag.Int64("seed", 0, "Random seed, 0 for time based")
	mute := flag.Bool("mute", false, "Disable audio")
	debug := flag.Bool("debug", false, "Enable debug logging")
	writeConfig := flag.String("write-config", "", "Write the effective config to this file and exit")
	flag.Parse()

	cfg, err := shadowpong.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *backend != "" {
		cfg.Renderer.Backend = *backend
	}
	if *frames >= 0 {
		cfg.Renderer.Frames = *frames
	}
	if *snapshot != "" {
		cfg.Renderer.Snapshot = *snapshot
	}
	if *background != "" {
		cfg.Assets.Background = *background
	}
	if *autoplay {
		cfg.Game.Autoplay = true
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if *mute {
		cfg.Audio.Enabled = false
	}
	if *debug {
		cfg.Log.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg shadowpong.Config) (err error) {
	name, renderer, err := shadowpong.RendererFromConfig(cfg)
	if err != nil {
		return err
	}

	logging := shadowpong.LoggingModule{Prefix: "shadowpong", Debug: cfg.Log.Debug}
	if name == shadowpong.RendererTerminal {
		// the terminal belongs to the renderer
		f, err := os.Create("shadowpong.log")
		if err != nil {
			return err
		}
		defer f.Close()
		logging.Output = f
	}

	timing := shadowpong.TimeModule{}
	if name == shadowpong.RendererSoftware {
		timing.FixedStep = cfg.Renderer.FixedStep.Duration
	}

	text := core.DefaultTextRenderer()
	if cfg.Assets.Font != "" {
		text, err = core.NewTextRendererFromFile(cfg.Assets.Font, cfg.Assets.FontSize)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrResourceCreation, err)
		}
	}

	// install panics carry ErrResourceCreation
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()

	app := shadowpong.NewAppBuilder().
		UseStates(shadowpong.StateRunning, shadowpong.StateQuit).
		UseModules(
			logging,
			timing,
			shadowpong.AssetServerModule{
				Background: cfg.Assets.Background,
				Width:      cfg.Window.Width,
				Height:     cfg.Window.Height,
			},
		).
		Build()

	if name == shadowpong.RendererWGPU {
		app.UseModules(shadowpong.PlatformWindowModule{
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
			Title:  cfg.Window.Title,
		})
	}
	app.UseModules(
		shadowpong.InputModule{},
		shadowpong.GameModule{
			Config: cfg.Game,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		},
		shadowpong.LightingModule{Light: cfg.LightConfig(), Text: text},
		shadowpong.AudioModule{Enabled: cfg.Audio.Enabled, Volume: cfg.Audio.Volume},
	)
	app.UseRendererWithWindow(name, renderer, cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)

	app.Run()
	return nil
}
