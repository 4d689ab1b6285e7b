// Package keyboard implements the handheld's keyboard: a microcontroller on the I2C bus that
// answers every one byte read with the last key pressed, or zero when there is none.
package keyboard

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.viam.com/utils"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"go.tdeck.dev/pda/components/input"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

// Model is the keyboard model.
var Model = resource.Model("tdeck-keyboard")

const (
	// DefaultAddress is the keyboard controller's I2C address.
	DefaultAddress      = 0x55
	defaultPollInterval = 20 * time.Millisecond
	defaultQueueSize    = 32
)

// Config describes the keyboard controller.
type Config struct {
	// Bus is the periph bus name; empty opens the first bus found.
	Bus          string        `json:"bus,omitempty"`
	Address      int           `json:"address,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	QueueSize    int           `json:"queue_size,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if conf.Address < 0 || conf.Address > 0x7f {
		return nil, utils.NewConfigValidationError(path, errors.Errorf("address 0x%x is not a 7 bit i2c address", conf.Address))
	}
	if conf.PollInterval < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("poll_interval must not be negative"))
	}
	if conf.QueueSize < 0 {
		return nil, utils.NewConfigValidationError(path, errors.New("queue_size must not be negative"))
	}
	return nil, nil
}

func init() {
	resource.RegisterComponent(input.API, Model, resource.Registration[input.Controller, *Config]{
		Constructor: func(
			ctx context.Context,
			_ resource.Dependencies,
			conf resource.Config,
			logger logging.Logger,
		) (input.Controller, error) {
			newConf, err := resource.NativeConfig[*Config](conf)
			if err != nil {
				return nil, err
			}
			if _, err := host.Init(); err != nil {
				return nil, errors.Wrap(err, "initializing periph host drivers")
			}
			bus, err := i2creg.Open(newConf.Bus)
			if err != nil {
				return nil, errors.Wrapf(err, "opening i2c bus %q", newConf.Bus)
			}
			kb, err := NewKeyboard(conf, bus, clock.New(), logger)
			if err != nil {
				utils.UncheckedError(bus.Close())
				return nil, err
			}
			kb.busCloser = bus
			return kb, nil
		},
	})
}

// Keyboard polls the keyboard controller and queues the keys it reports.
type Keyboard struct {
	resource.Named

	dev       *i2c.Dev
	busCloser io.Closer
	keys      chan byte
	online    atomic.Bool
	dropped   atomic.Int64

	callbacks *input.Callbacks
	workers   *utils.StoppableWorkers
	logger    logging.Logger

	closeOnce sync.Once
}

// NewKeyboard probes the controller and starts polling it on clk.
func NewKeyboard(conf resource.Config, bus i2c.Bus, clk clock.Clock, logger logging.Logger) (*Keyboard, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	addr := newConf.Address
	if addr == 0 {
		addr = DefaultAddress
	}
	interval := newConf.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}
	queueSize := newConf.QueueSize
	if queueSize == 0 {
		queueSize = defaultQueueSize
	}

	kb := &Keyboard{
		Named:     conf.ResourceName().AsNamed(),
		dev:       &i2c.Dev{Bus: bus, Addr: uint16(addr)},
		keys:      make(chan byte, queueSize),
		callbacks: input.NewCallbacks([]input.Control{input.KeyboardKey}),
		logger:    logger,
	}
	kb.probe()

	kb.workers = utils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		ticker := clk.Ticker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				kb.poll(ctx)
			}
		}
	})
	return kb, nil
}

func (kb *Keyboard) probe() {
	if _, err := kb.readKey(); err != nil {
		kb.logger.Warnw("keyboard not online", "addr", kb.dev.Addr, "error", err)
		return
	}
	kb.online.Store(true)
}

func (kb *Keyboard) readKey() (byte, error) {
	buf := make([]byte, 1)
	if err := kb.dev.Tx(nil, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// poll reads one key. Read errors are logged once per online/offline transition.
func (kb *Keyboard) poll(ctx context.Context) {
	key, err := kb.readKey()
	if err != nil {
		if kb.online.Swap(false) {
			kb.logger.Warnw("keyboard went offline", "error", err)
		}
		return
	}
	if !kb.online.Swap(true) {
		kb.logger.Infow("keyboard online", "addr", kb.dev.Addr)
	}
	if key == 0 {
		return
	}

	select {
	case kb.keys <- key:
	default:
		kb.dropped.Inc()
		kb.logger.Debugw("keyboard queue full, dropping key", "key", key)
	}
	kb.callbacks.Dispatch(ctx, input.Event{
		Time:    time.Now(),
		Event:   input.KeyPress,
		Control: input.KeyboardKey,
		Value:   float64(key),
	})
}

// Key returns the oldest queued key without blocking.
func (kb *Keyboard) Key() (byte, bool) {
	select {
	case key := <-kb.keys:
		return key, true
	default:
		return 0, false
	}
}

// Online reports whether the last read from the controller succeeded.
func (kb *Keyboard) Online() bool {
	return kb.online.Load()
}

// Dropped returns how many keys were discarded because the queue was full.
func (kb *Keyboard) Dropped() int64 {
	return kb.dropped.Load()
}

// Controls returns the single key control.
func (kb *Keyboard) Controls(ctx context.Context) ([]input.Control, error) {
	return []input.Control{input.KeyboardKey}, nil
}

// Events returns the last key event.
func (kb *Keyboard) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	return kb.callbacks.Events(ctx)
}

// RegisterControlCallback registers a callback fired for each key read.
func (kb *Keyboard) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	if control != input.KeyboardKey {
		return errors.Errorf("keyboard has no control %q", control)
	}
	return kb.callbacks.RegisterControlCallback(ctx, control, triggers, ctrlFunc)
}

// Close stops polling and releases the bus when the keyboard opened it.
func (kb *Keyboard) Close(ctx context.Context) error {
	var err error
	kb.closeOnce.Do(func() {
		kb.workers.Stop()
		if kb.busCloser != nil {
			err = kb.busCloser.Close()
		}
	})
	return err
}
