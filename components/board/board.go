// Package board defines the interfaces of a board: a source of named digital interrupt pins
// whose edges can be streamed to consumers such as input controllers.
package board

import (
	"context"

	"go.tdeck.dev/pda/resource"
)

// API is the resource API of boards.
var API = resource.API("board")

// Named is a helper for getting the named board's typed resource name.
func Named(name string) resource.Name {
	return resource.NewName(API, name)
}

// FromDependencies is a helper for getting the named board from a collection of dependencies.
func FromDependencies(deps resource.Dependencies, name string) (Board, error) {
	return resource.FromDependencies[Board](deps, Named(name))
}

// Tick represents a signal received by an interrupt pin. This signal is communicated
// via registered channel to the various drivers.
type Tick struct {
	Name             string
	High             bool
	TimestampNanosec uint64
}

// A DigitalInterrupt represents a configured interrupt on the board that
// when interrupted, calls the added callbacks.
type DigitalInterrupt interface {
	// Name returns the name of the interrupt.
	Name() string

	// Value returns the number of ticks seen so far.
	Value(ctx context.Context) (int64, error)
}

// A Board represents a physical general purpose board that exposes digital interrupt pins.
type Board interface {
	resource.Resource

	// DigitalInterruptByName returns a digital interrupt by name.
	DigitalInterruptByName(name string) (DigitalInterrupt, error)

	// DigitalInterruptNames returns the names of all known digital interrupts.
	DigitalInterruptNames() []string

	// StreamTicks starts a stream of digital interrupt ticks. Ticks are delivered on ch until ctx
	// is cancelled or the board is closed.
	StreamTicks(ctx context.Context, interrupts []DigitalInterrupt, ch chan Tick) error
}
