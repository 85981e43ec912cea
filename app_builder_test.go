package shadowpong

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockModule struct {
	installed int
}

func (m *MockModule) Install(app *App, commands *Commands) {
	m.installed++
}

func TestAppBuilder_Stateless(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.False(t, app.stateful)
	assert.Equal(t, State(0), app.initialState)
	assert.Equal(t, State(0), app.finalState)
	assert.Len(t, app.stages, 8)
}

func TestAppBuilder_UseStates(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 10).Build()

	assert.True(t, app.stateful)
	assert.Equal(t, State(1), app.initialState)
	assert.Equal(t, State(10), app.finalState)
	assert.Len(t, app.systems[Update.Name], 10)
}

func TestAppBuilder_UseModules(t *testing.T) {
	builder := NewAppBuilder()
	builder.UseModules(&MockModule{})

	assert.Len(t, builder.modules, 1)
}

func TestAppBuilder_Build_WithModules(t *testing.T) {
	module1 := &MockModule{}
	module2 := &MockModule{}

	NewAppBuilder().UseModules(module1).UseModules(module2).Build()

	assert.Equal(t, 1, module1.installed)
	assert.Equal(t, 1, module2.installed)
}

func TestAppBuilder_ModulesSeeStages(t *testing.T) {
	var order []string
	mod := moduleFunc(func(app *App, cmd *Commands) {
		app.UseSystem(System(func() { order = append(order, "render") }).InStage(Render))
		app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
		app.UseSystem(System(func() { order = append(order, "prelude") }).InStage(Prelude))
	})

	app := NewAppBuilder().UseModules(mod).Build()
	app.Step()

	assert.Equal(t, []string{"prelude", "update", "render"}, order)
}

type moduleFunc func(app *App, cmd *Commands)

func (f moduleFunc) Install(app *App, cmd *Commands) { f(app, cmd) }
