// Package trackball implements the handheld's trackball: five switches (four directions and a
// click) wired to board interrupts. Edges are accumulated without locks and consumed by polling.
package trackball

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/components/input"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

// Model is the trackball model.
var Model = resource.Model("tdeck-trackball")

const tickBuffer = 64

func init() {
	resource.RegisterComponent(input.API, Model, resource.Registration[input.Controller, *Config]{
		Constructor: func(
			ctx context.Context,
			deps resource.Dependencies,
			conf resource.Config,
			logger logging.Logger,
		) (input.Controller, error) {
			return NewTrackball(ctx, deps, conf, logger)
		},
	})
}

var controlFor = map[Source]input.Control{
	Up:    input.ButtonUp,
	Down:  input.ButtonDown,
	Left:  input.ButtonLeft,
	Right: input.ButtonRight,
	Click: input.ButtonClick,
}

// Trackball is an input controller over a Counter fed by board interrupts.
type Trackball struct {
	resource.Named
	*Counter

	callbacks    *input.Callbacks
	sources      map[string]Source
	cancelStream context.CancelFunc
	workers      *utils.StoppableWorkers
	logger       logging.Logger
}

// NewTrackball subscribes to the configured interrupts of the board dependency.
func NewTrackball(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (*Trackball, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	b, err := board.FromDependencies(deps, newConf.Board)
	if err != nil {
		return nil, err
	}

	tb := &Trackball{
		Named:     conf.ResourceName().AsNamed(),
		Counter:   NewCounter(newConf.shift(), int32(newConf.MaxDelta), newConf.Debounce),
		callbacks: input.NewCallbacks(lo.Values(controlFor)),
		sources:   map[string]Source{},
		logger:    logger,
	}

	interrupts := make([]board.DigitalInterrupt, 0, numSources)
	for src, name := range newConf.InterruptNames() {
		di, err := b.DigitalInterruptByName(name)
		if err != nil {
			return nil, err
		}
		tb.sources[di.Name()] = src
		interrupts = append(interrupts, di)
	}

	ticks := make(chan board.Tick, tickBuffer)
	// The stream outlives the constructor's ctx and ends on Close.
	streamCtx, cancel := context.WithCancel(context.Background())
	if err := b.StreamTicks(streamCtx, interrupts, ticks); err != nil {
		cancel()
		return nil, err
	}
	tb.cancelStream = cancel
	tb.workers = utils.NewBackgroundStoppableWorkers(func(ctx context.Context) {
		tb.receiveTicks(ctx, ticks)
	})
	logger.Infow("trackball ready", "board", newConf.Board, "track_speed", newConf.shift(), "debounce", newConf.Debounce)
	return tb, nil
}

func (tb *Trackball) receiveTicks(ctx context.Context, ticks <-chan board.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-ticks:
			tb.handleTick(ctx, tick)
		}
	}
}

// handleTick records falling edges only; the switches idle high.
func (tb *Trackball) handleTick(ctx context.Context, tick board.Tick) {
	if tick.High {
		return
	}
	src, ok := tb.sources[tick.Name]
	if !ok {
		return
	}
	if !tb.Record(src, int64(tick.TimestampNanosec)) {
		tb.logger.Debugw("debounced trackball edge", "source", src.String())
		return
	}
	tb.callbacks.Dispatch(ctx, input.Event{
		Time:    time.Unix(0, int64(tick.TimestampNanosec)),
		Event:   input.ButtonPress,
		Control: controlFor[src],
		Value:   float64(tb.Pending(src)),
	})
}

// Controls lists the five switches.
func (tb *Trackball) Controls(ctx context.Context) ([]input.Control, error) {
	return []input.Control{input.ButtonUp, input.ButtonDown, input.ButtonLeft, input.ButtonRight, input.ButtonClick}, nil
}

// Events returns the latest event of each switch.
func (tb *Trackball) Events(ctx context.Context) (map[input.Control]input.Event, error) {
	return tb.callbacks.Events(ctx)
}

// RegisterControlCallback registers a callback fired as edges arrive.
func (tb *Trackball) RegisterControlCallback(
	ctx context.Context,
	control input.Control,
	triggers []input.EventType,
	ctrlFunc input.ControlFunction,
) error {
	return tb.callbacks.RegisterControlCallback(ctx, control, triggers, ctrlFunc)
}

// Close stops listening to the board.
func (tb *Trackball) Close(ctx context.Context) error {
	tb.cancelStream()
	tb.workers.Stop()
	return nil
}
