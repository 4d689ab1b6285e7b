package genericlinux

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

func init() {
	resource.RegisterComponent(
		board.API,
		Model,
		resource.Registration[board.Board, *Config]{
			Constructor: func(
				ctx context.Context,
				_ resource.Dependencies,
				conf resource.Config,
				logger logging.Logger,
			) (board.Board, error) {
				return NewBoard(ctx, conf, logger)
			},
		})
}

// Board watches the configured lines of one gpio chip.
type Board struct {
	resource.Named

	mu         sync.RWMutex
	interrupts map[string]*digitalInterrupt

	logger  logging.Logger
	workers *utils.StoppableWorkers
}

// NewBoard opens every configured interrupt line. Lines already opened are closed again if a
// later one fails.
func NewBoard(ctx context.Context, conf resource.Config, logger logging.Logger) (*Board, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}

	b := &Board{
		Named:      conf.ResourceName().AsNamed(),
		interrupts: map[string]*digitalInterrupt{},
		logger:     logger,
		workers:    utils.NewBackgroundStoppableWorkers(),
	}
	for _, diConf := range newConf.DigitalInterrupts {
		di, err := b.createDigitalInterrupt(newConf, diConf)
		if err != nil {
			return nil, multierr.Combine(err, b.Close(ctx))
		}
		b.interrupts[diConf.Name] = di
		logger.Debugw("watching interrupt line", "name", diConf.Name, "chip", newConf.chip(), "offset", diConf.Pin)
	}
	return b, nil
}

func (b *Board) lookup(name string) (*board.BasicDigitalInterrupt, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	di, ok := b.interrupts[name]
	if !ok {
		return nil, false
	}
	return di.interrupt, true
}

// DigitalInterruptByName returns the interrupt by the given name if it exists.
func (b *Board) DigitalInterruptByName(name string) (board.DigitalInterrupt, error) {
	di, ok := b.lookup(name)
	if !ok {
		return nil, board.NewDigitalInterruptNotFoundError(name)
	}
	return di, nil
}

// DigitalInterruptNames returns the names of all known digital interrupts.
func (b *Board) DigitalInterruptNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	names := make([]string, 0, len(b.interrupts))
	for name := range b.interrupts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StreamTicks starts a stream of digital interrupt ticks.
func (b *Board) StreamTicks(ctx context.Context, interrupts []board.DigitalInterrupt, ch chan board.Tick) error {
	return board.StreamTicksFrom(ctx, b.workers, b.lookup, interrupts, ch)
}

// Close stops the line monitors and releases every line.
func (b *Board) Close(ctx context.Context) error {
	b.workers.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for name, di := range b.interrupts {
		err = multierr.Combine(err, di.Close())
		delete(b.interrupts, name)
	}
	return err
}
