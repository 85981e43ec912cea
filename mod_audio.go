package shadowpong

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Tone is a short sine blip.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

var (
	toneHit   = Tone{Freq: 880, Duration: 60 * time.Millisecond}
	toneScore = Tone{Freq: 440, Duration: 200 * time.Millisecond}
)

// Player plays tones. The speaker backed one is used at runtime.
type Player interface {
	Play(t Tone) error
	Close()
}

// Audio beeps on paddle hits and points. Enabled is false when the output
// device could not be opened.
type Audio struct {
	Enabled bool
	player  Player
}

// AudioModule is optional: a missing sound device is logged and the module
// stays silent.
type AudioModule struct {
	Enabled bool
	// Volume in [0,1].
	Volume float64
	// Player overrides the speaker, mainly for tests.
	Player Player
}

func (mod AudioModule) Install(app *App, cmd *Commands) {
	audio := &Audio{}
	if mod.Enabled {
		player := mod.Player
		if player == nil {
			p, err := newSpeakerPlayer(mod.Volume)
			if err != nil {
				app.Logger().Warnf("Audio disabled: %v", err)
			} else {
				player = p
			}
		}
		if player != nil {
			audio.Enabled = true
			audio.player = player
		}
	}
	cmd.AddResources(audio)

	app.UseSystem(
		System(audioSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(
			System(audioCloseSystem).
				InStage(Finale).
				InState(OnExit(app.finalState)),
		)
	}
}

func audioSystem(events *GameEvents, audio *Audio, cmd *Commands) {
	if !audio.Enabled {
		return
	}
	var tones []Tone
	if len(events.Hits) > 0 {
		tones = append(tones, toneHit)
	}
	if len(events.Scores) > 0 {
		tones = append(tones, toneScore)
	}
	for _, t := range tones {
		if err := audio.player.Play(t); err != nil {
			cmd.Logger().Warnf("Audio disabled: %v", err)
			audio.Enabled = false
			return
		}
	}
}

func audioCloseSystem(audio *Audio) {
	if audio.player != nil {
		audio.player.Close()
	}
}

type speakerPlayer struct {
	volume float64
}

func newSpeakerPlayer(volume float64) (*speakerPlayer, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}
	return &speakerPlayer{volume: volume}, nil
}

func (p *speakerPlayer) Play(t Tone) error {
	sine, err := generators.SineTone(sampleRate, t.Freq)
	if err != nil {
		return err
	}
	speaker.Play(&effects.Volume{
		Streamer: beep.Take(sampleRate.N(t.Duration), sine),
		Base:     2,
		Volume:   volumeExponent(p.volume),
		Silent:   p.volume <= 0,
	})
	return nil
}

func (p *speakerPlayer) Close() {
	speaker.Clear()
}

// volumeExponent maps a linear gain to the base-2 exponent used by
// effects.Volume.
func volumeExponent(gain float64) float64 {
	if gain <= 0 {
		return 0
	}
	return math.Log2(gain)
}
