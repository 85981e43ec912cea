package shadowpong

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPlayer struct {
	played []Tone
	closed bool
	err    error
}

func (p *recordingPlayer) Play(t Tone) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, t)
	return nil
}

func (p *recordingPlayer) Close() { p.closed = true }

func newAudioApp(mod AudioModule) *App {
	return NewAppBuilder().
		UseStates(StateRunning, StateQuit).
		UseModules(
			moduleFunc(func(app *App, cmd *Commands) { cmd.AddResources(&GameEvents{}) }),
			mod,
		).
		Build()
}

func TestAudio_TonesFollowEvents(t *testing.T) {
	player := &recordingPlayer{}
	app := newAudioApp(AudioModule{Enabled: true, Player: player})
	events, _ := Resource[GameEvents](app)

	app.Step()
	assert.Empty(t, player.played)

	events.Hits = append(events.Hits, PaddleHit{Side: SideLeft}, PaddleHit{Side: SideRight})
	app.Step()
	assert.Equal(t, []Tone{toneHit}, player.played)

	events.Clear()
	events.Scores = append(events.Scores, Scored{Side: SideLeft})
	app.Step()
	assert.Equal(t, []Tone{toneHit, toneScore}, player.played)

	app.changeState(StateQuit)
	app.Step()
	assert.True(t, player.closed)
}

func TestAudio_Disabled(t *testing.T) {
	player := &recordingPlayer{}
	app := newAudioApp(AudioModule{Enabled: false, Player: player})
	events, _ := Resource[GameEvents](app)
	audio, _ := Resource[Audio](app)

	events.Hits = append(events.Hits, PaddleHit{})
	app.Step()

	assert.False(t, audio.Enabled)
	assert.Empty(t, player.played)
}

func TestAudio_PlayErrorSilences(t *testing.T) {
	player := &recordingPlayer{err: errors.New("device gone")}
	app := newAudioApp(AudioModule{Enabled: true, Player: player})
	events, _ := Resource[GameEvents](app)
	audio, _ := Resource[Audio](app)

	events.Scores = append(events.Scores, Scored{})
	app.Step()
	assert.False(t, audio.Enabled)
}

func TestVolumeExponent(t *testing.T) {
	assert.Equal(t, 0.0, volumeExponent(1))
	assert.Equal(t, -1.0, volumeExponent(0.5))
	assert.Equal(t, 0.0, volumeExponent(0))
	assert.False(t, math.IsInf(volumeExponent(-1), 0))
}
