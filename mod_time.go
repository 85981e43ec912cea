package shadowpong

import (
	"time"
)

type Time struct {
	Time    time.Time
	Dt      time.Duration
	Elapsed time.Duration
	// Ticks counts frames since start; the light glow oscillates with it.
	Ticks uint64

	fixed time.Duration
	now   func() time.Time
}

// Seconds is Dt as float32 seconds.
func (t *Time) Seconds() float32 {
	return float32(t.Dt.Seconds())
}

// TimeModule advances Time once per frame. With FixedStep set, every frame
// lasts exactly FixedStep regardless of the wall clock, which keeps headless
// runs reproducible.
type TimeModule struct {
	FixedStep time.Duration
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:  time.Now(),
		fixed: mod.FixedStep,
		now:   time.Now,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(t *Time) {
	t.advance()
}

func (t *Time) advance() {
	var now time.Time
	if t.fixed > 0 {
		now = t.Time.Add(t.fixed)
	} else {
		now = t.now()
	}

	t.Dt = now.Sub(t.Time)
	t.Time = now
	t.Elapsed += t.Dt
	t.Ticks++
}
