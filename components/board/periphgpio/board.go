// Package periphgpio is a board backed by periph.io pin drivers. Pins are looked up by name in
// the periph registry ("GPIO3", "P1_5") and configured as pulled inputs with edge detection.
package periphgpio

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

// Model is the periph board model.
var Model = resource.Model("periph")

const defaultEdgeTimeout = 100 * time.Millisecond

// A Config describes a periph board.
type Config struct {
	// Pull is one of "up" (default), "down" or "none".
	Pull string `json:"pull,omitempty"`
	// EdgeTimeout bounds each wait for an edge so that Close is noticed.
	EdgeTimeout       time.Duration                  `json:"edge_timeout,omitempty"`
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if err := board.ValidateDigitalInterrupts(path, conf.DigitalInterrupts); err != nil {
		return nil, err
	}
	if _, err := parsePull(conf.Pull); err != nil {
		return nil, goutils.NewConfigValidationError(path, err)
	}
	if conf.EdgeTimeout < 0 {
		return nil, goutils.NewConfigValidationError(path, errors.New("edge_timeout must not be negative"))
	}
	return nil, nil
}

func parsePull(pull string) (gpio.Pull, error) {
	switch strings.ToLower(pull) {
	case "", "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "none", "float":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, errors.Errorf("unknown pull %q", pull)
	}
}

var (
	hostInitOnce sync.Once
	errHostInit  error
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
				hostInitOnce.Do(func() {
					_, errHostInit = host.Init()
				})
				if errHostInit != nil {
					return nil, errors.Wrap(errHostInit, "initializing periph host drivers")
				}
				return NewBoard(ctx, conf, logger, gpioreg.ByName)
			},
		})
}

// Board waits for edges on periph pins.
type Board struct {
	resource.Named

	mu         sync.RWMutex
	interrupts map[string]*digitalInterrupt

	logger  logging.Logger
	workers *goutils.StoppableWorkers
}

type digitalInterrupt struct {
	interrupt *board.BasicDigitalInterrupt
	pin       gpio.PinIn
}

// NewBoard configures every interrupt pin found through pinByName.
func NewBoard(
	ctx context.Context,
	conf resource.Config,
	logger logging.Logger,
	pinByName func(name string) gpio.PinIO,
) (*Board, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	pull, err := parsePull(newConf.Pull)
	if err != nil {
		return nil, err
	}
	timeout := newConf.EdgeTimeout
	if timeout == 0 {
		timeout = defaultEdgeTimeout
	}

	b := &Board{
		Named:      conf.ResourceName().AsNamed(),
		interrupts: map[string]*digitalInterrupt{},
		logger:     logger,
		workers:    goutils.NewBackgroundStoppableWorkers(),
	}
	for _, diConf := range newConf.DigitalInterrupts {
		pin := pinByName(diConf.Pin)
		if pin == nil {
			return nil, multierr.Combine(errors.Errorf("no gpio pin named %q", diConf.Pin), b.Close(ctx))
		}
		if err := pin.In(pull, gpio.FallingEdge); err != nil {
			return nil, multierr.Combine(errors.Wrapf(err, "configuring pin %q", diConf.Pin), b.Close(ctx))
		}
		di := &digitalInterrupt{interrupt: board.NewBasicDigitalInterrupt(diConf), pin: pin}
		b.interrupts[diConf.Name] = di
		b.workers.Add(func(ctx context.Context) {
			di.monitor(ctx, timeout)
		})
	}
	return b, nil
}

func (di *digitalInterrupt) monitor(ctx context.Context, timeout time.Duration) {
	for ctx.Err() == nil {
		if !di.pin.WaitForEdge(timeout) {
			continue
		}
		// Pins only report falling edges. The level may already be back high by now.
		if err := di.interrupt.Tick(ctx, false, uint64(time.Now().UnixNano())); err != nil {
			return
		}
	}
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

// Close stops waiting for edges and halts every pin.
func (b *Board) Close(ctx context.Context) error {
	b.workers.Stop()

	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	for name, di := range b.interrupts {
		err = multierr.Combine(err, di.pin.Halt())
		delete(b.interrupts, name)
	}
	return err
}
