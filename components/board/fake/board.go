// Package fake implements a fake board whose interrupts are ticked by hand. It is used by tests
// and by the headless runtime, where the console drives the interrupts.
package fake

import (
	"context"
	"sort"
	"sync"

	"go.viam.com/utils"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

// Model is the fake board model.
var Model = resource.Model("fake")

// A Config describes the configuration of a fake board.
type Config struct {
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if err := board.ValidateDigitalInterrupts(path, conf.DigitalInterrupts); err != nil {
		return nil, err
	}
	return nil, nil
}

func init() {
	resource.RegisterComponent(
		board.API,
		Model,
		resource.Registration[board.Board, *Config]{
			Constructor: func(
				ctx context.Context,
				_ resource.Dependencies,
				cfg resource.Config,
				logger logging.Logger,
			) (board.Board, error) {
				return NewBoard(ctx, cfg, logger)
			},
		})
}

// NewBoard returns a new fake board.
func NewBoard(ctx context.Context, conf resource.Config, logger logging.Logger) (*Board, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	b := &Board{
		Named:    conf.ResourceName().AsNamed(),
		Digitals: map[string]*board.BasicDigitalInterrupt{},
		logger:   logger,
		workers:  utils.NewBackgroundStoppableWorkers(),
	}
	for _, c := range newConf.DigitalInterrupts {
		b.Digitals[c.Name] = board.NewBasicDigitalInterrupt(c)
	}
	return b, nil
}

// A Board provides dummy data from fake parts in order to implement a Board.
type Board struct {
	resource.Named

	mu         sync.RWMutex
	Digitals   map[string]*board.BasicDigitalInterrupt
	CloseCount int

	logger  logging.Logger
	workers *utils.StoppableWorkers
}

// DigitalInterruptByName returns the interrupt by the given name if it exists.
func (b *Board) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	d, ok := b.lookup(name)
	if !ok {
		return nil, board.NewDigitalInterruptNotFoundError(name)
	}
	return d, nil
}

func (b *Board) lookup(name string) (*board.BasicDigitalInterrupt, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.Digitals[name]
	return d, ok
}

// DigitalInterruptNames returns the names of all known digital interrupts.
func (b *Board) DigitalInterruptNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.Digitals))
	for k := range b.Digitals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// StreamTicks starts a stream of digital interrupt ticks.
func (b *Board) StreamTicks(ctx context.Context, interrupts []board.DigitalInterrupt, ch chan board.Tick) error {
	return board.StreamTicksFrom(ctx, b.workers, b.lookup, interrupts, ch)
}

// Tick fires a falling edge on the named interrupt, as a button press would.
func (b *Board) Tick(ctx context.Context, name string, timestampNanosec uint64) error {
	d, ok := b.lookup(name)
	if !ok {
		return board.NewDigitalInterruptNotFoundError(name)
	}
	return d.Tick(ctx, false, timestampNanosec)
}

// Close attempts to cleanly close each part of the board.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	b.CloseCount++
	b.mu.Unlock()

	b.workers.Stop()
	return nil
}
