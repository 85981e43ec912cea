package shadowpong

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	physics := Stage{Name: "Physics"}
	app.UseStage(physics, AfterStage(Update))

	var order []string
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { order = append(order, "physics") }).InStage(physics))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.Step()

	assert.Equal(t, []string{"update", "physics", "post"}, order)

	assert.Panics(t, func() { app.UseStage(physics, BeforeStage(Render)) })
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
}

func TestUseSystem_Errors(t *testing.T) {
	stateless := NewAppBuilder().Build()
	assert.PanicsWithValue(t, "Trying to use a stateful system in a stateless app.", func() {
		stateless.UseSystem(System(func() {}).InState(OnExecute(StateRunning)))
	})
	assert.Panics(t, func() {
		stateless.UseSystem(System(func() {}).InStage(Stage{Name: "Nope"}))
	})

	stateful := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()
	assert.PanicsWithValue(t, "State 7 doesn't exist", func() {
		stateful.UseSystem(System(func() {}).InState(OnExecute(7)))
	})
	assert.NotPanics(t, func() {
		stateful.UseSystem(System(func() {}).InState(Always()))
	})
}

func TestSchedule_PausedStateSkipsSystems(t *testing.T) {
	app := NewAppBuilder().UseStates(StateRunning, StateQuit).Build()

	running, always := 0, 0
	app.UseSystem(System(func() { running++ }).InState(OnExecute(StateRunning)))
	app.UseSystem(System(func() { always++ }).RunAlways())

	app.Step()
	app.changeState(StatePaused)
	app.Step()
	app.Step()

	assert.Equal(t, 2, running)
	assert.Equal(t, 3, always)
}
