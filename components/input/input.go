// Package input provides human input devices: the trackball and the keyboard of the handheld.
package input

import (
	"context"
	"time"

	"go.tdeck.dev/pda/resource"
)

// API is the resource API of input controllers.
var API = resource.API("input")

// Named is a helper for getting the named input's typed resource name.
func Named(name string) resource.Name {
	return resource.NewName(API, name)
}

// FromDependencies is a helper for getting the named input controller from a collection of
// dependencies.
func FromDependencies(deps resource.Dependencies, name string) (Controller, error) {
	return resource.FromDependencies[Controller](deps, Named(name))
}

// Controller is a logical "container" more than an actual device.
// It could be a trackball made of digital interrupts, a keyboard on a bus, etc.
type Controller interface {
	resource.Resource

	// Controls returns a list of Controls provided by the Controller.
	Controls(ctx context.Context) ([]Control, error)

	// Events returns most recent Event for each input (which should be the current state).
	Events(ctx context.Context) (map[Control]Event, error)

	// RegisterControlCallback registers a callback that will fire on given EventTypes for a given
	// Control. A nil function removes the callback.
	RegisterControlCallback(ctx context.Context, control Control, triggers []EventType, ctrlFunc ControlFunction) error
}

// ControlFunction is a callback passed to RegisterControlCallback.
type ControlFunction func(ctx context.Context, ev Event)

// EventType represents the type of input event, and is returned by Events() or passed to
// ControlFunction callbacks.
type EventType string

// EventType list.
const (
	// Callbacks registered for this event will be called in ADDITION to other registered event callbacks.
	AllEvents EventType = "AllEvents"
	// Sent at controller initialization.
	Connect EventType = "Connect"
	// Typical button press.
	ButtonPress EventType = "ButtonPress"
	// A key was read from a keyboard. The key code is carried in Value.
	KeyPress EventType = "KeyPress"
)

// Control identifies the input (specific Axis or Button) of a controller.
type Control string

// Controls.
const (
	// Trackball directions and button.
	ButtonUp    Control = "ButtonUp"
	ButtonDown  Control = "ButtonDown"
	ButtonLeft  Control = "ButtonLeft"
	ButtonRight Control = "ButtonRight"
	ButtonClick Control = "ButtonClick"

	// Keyboard.
	KeyboardKey Control = "KeyboardKey"
)

// Event is passed to the registered ControlFunction or returned by Events().
type Event struct {
	Time    time.Time
	Event   EventType
	Control Control // Key or Axis
	Value   float64 // edge count for buttons, delta for axes, key code for keys
}
