package shadowpong

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Light    LightSection   `toml:"light"`
	Game     GameConfig     `toml:"game"`
	Audio    AudioConfig    `toml:"audio"`
	Assets   AssetsConfig   `toml:"assets"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type RendererConfig struct {
	Backend string `toml:"backend"`
	// Frames stops the software backend after that many frames. Zero runs
	// until quit.
	Frames   int    `toml:"frames"`
	Snapshot string `toml:"snapshot"`
	Workers  int    `toml:"workers"`
	// FixedStep is the simulated frame length of the headless backends.
	FixedStep Duration `toml:"fixed_step"`
}

type LightSection struct {
	RayCount       int        `toml:"ray_count"`
	MarchSteps     int        `toml:"march_steps"`
	AlphaThreshold float32    `toml:"alpha_threshold"`
	Strength       float32    `toml:"strength"`
	GlowFactor     float32    `toml:"glow_factor"`
	GlowRate       float32    `toml:"glow_rate"`
	LightColor     [4]float32 `toml:"light_color"`
	ShadowColor    [4]float32 `toml:"shadow_color"`
}

type AudioConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

type AssetsConfig struct {
	Background string  `toml:"background"`
	Font       string  `toml:"font"`
	FontSize   float64 `toml:"font_size"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

// Duration decodes TOML strings such as "16ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() Config {
	light := core.DefaultLightConfig()
	return Config{
		Window: WindowConfig{
			Width:  800,
			Height: 600,
			Title:  "Shadow Pong",
		},
		Renderer: RendererConfig{
			Backend:   string(RendererWGPU),
			Snapshot:  "shadowpong.png",
			FixedStep: Duration{time.Second / 60},
		},
		Light: LightSection{
			RayCount:       light.RayCount,
			MarchSteps:     light.MarchSteps,
			AlphaThreshold: light.AlphaThreshold,
			Strength:       light.Strength,
			GlowFactor:     light.GlowFactor,
			GlowRate:       light.GlowRate,
			LightColor:     light.LightColor,
			ShadowColor:    light.ShadowColor,
		},
		Game:  DefaultGameConfig(),
		Audio: AudioConfig{Enabled: true, Volume: 0.3},
		Assets: AssetsConfig{
			FontSize: 13,
		},
	}
}

// LoadConfig overlays the TOML file at path onto DefaultConfig. Keys missing
// from the file keep their defaults; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		return cfg, fmt.Errorf("%w: config %s: %v", core.ErrInvalidConfig, path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("%w: config %s: unknown keys %v", core.ErrInvalidConfig, path, undecoded)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as TOML.
func (c Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

func (c Config) LightConfig() core.LightConfig {
	return core.LightConfig{
		RayCount:       c.Light.RayCount,
		MarchSteps:     c.Light.MarchSteps,
		AlphaThreshold: c.Light.AlphaThreshold,
		Strength:       c.Light.Strength,
		GlowFactor:     c.Light.GlowFactor,
		GlowRate:       c.Light.GlowRate,
		LightColor:     mgl32.Vec4(c.Light.LightColor),
		ShadowColor:    mgl32.Vec4(c.Light.ShadowColor),
	}
}

// Validate rejects every invalid value. Nothing is clamped.
func (c Config) Validate() error {
	if err := core.ValidateScreenSize(c.Window.Width, c.Window.Height); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	switch RendererName(c.Renderer.Backend) {
	case RendererWGPU, RendererSoftware, RendererTerminal:
	default:
		return fmt.Errorf("%w: unknown renderer backend %q", core.ErrInvalidConfig, c.Renderer.Backend)
	}
	if c.Renderer.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", core.ErrInvalidConfig, c.Renderer.Frames)
	}
	if c.Renderer.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", core.ErrInvalidConfig, c.Renderer.Workers)
	}
	if c.Renderer.FixedStep.Duration < 0 {
		return fmt.Errorf("%w: fixed step must not be negative", core.ErrInvalidConfig)
	}
	if err := c.LightConfig().Validate(); err != nil {
		return fmt.Errorf("light: %w", err)
	}
	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio volume must be in [0,1], got %f", core.ErrInvalidConfig, c.Audio.Volume)
	}
	if c.Assets.FontSize <= 0 {
		return fmt.Errorf("%w: font size must be positive, got %f", core.ErrInvalidConfig, c.Assets.FontSize)
	}
	return nil
}
