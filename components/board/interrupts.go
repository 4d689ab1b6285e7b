package board

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"go.viam.com/utils"
)

// BasicDigitalInterrupt counts the ticks of one pin and forwards each tick to every channel
// added through AddChannel. Board implementations feed it from their edge source.
type BasicDigitalInterrupt struct {
	cfg   DigitalInterruptConfig
	count atomic.Int64

	mu       sync.RWMutex
	channels []chan Tick
}

// NewBasicDigitalInterrupt returns a new BasicDigitalInterrupt.
func NewBasicDigitalInterrupt(cfg DigitalInterruptConfig) *BasicDigitalInterrupt {
	return &BasicDigitalInterrupt{cfg: cfg}
}

// Name returns the name of the interrupt.
func (i *BasicDigitalInterrupt) Name() string {
	return i.cfg.Name
}

// Pin returns the hardware pin the interrupt is bound to.
func (i *BasicDigitalInterrupt) Pin() string {
	return i.cfg.Pin
}

// Value returns the amount of ticks that have occurred.
func (i *BasicDigitalInterrupt) Value(ctx context.Context) (int64, error) {
	return i.count.Load(), nil
}

// Tick records an edge and hands it to every listening channel. A listener that is not ready
// blocks the tick until ctx is done.
func (i *BasicDigitalInterrupt) Tick(ctx context.Context, high bool, nanoseconds uint64) error {
	i.count.Inc()

	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, ch := range i.channels {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- Tick{Name: i.cfg.Name, High: high, TimestampNanosec: nanoseconds}:
		}
	}
	return nil
}

// AddChannel adds a listener for ticks.
func (i *BasicDigitalInterrupt) AddChannel(ch chan Tick) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.channels = append(i.channels, ch)
}

// RemoveChannel removes a listener for ticks.
func (i *BasicDigitalInterrupt) RemoveChannel(ch chan Tick) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for idx := range i.channels {
		if i.channels[idx] == ch {
			i.channels = append(i.channels[:idx], i.channels[idx+1:]...)
			return
		}
	}
}

// ChannelCount returns how many listeners are attached.
func (i *BasicDigitalInterrupt) ChannelCount() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.channels)
}

// StreamTicksFrom attaches ch to each interrupt and starts a worker that detaches it again once
// either ctx or the owning board's workers are stopped. Every interrupt must be one of the
// board's own BasicDigitalInterrupts.
func StreamTicksFrom(
	ctx context.Context,
	workers *utils.StoppableWorkers,
	lookup func(name string) (*BasicDigitalInterrupt, bool),
	interrupts []DigitalInterrupt,
	ch chan Tick,
) error {
	basics := make([]*BasicDigitalInterrupt, 0, len(interrupts))
	for _, di := range interrupts {
		basic, ok := lookup(di.Name())
		if !ok {
			return NewDigitalInterruptNotFoundError(di.Name())
		}
		basics = append(basics, basic)
	}
	for _, basic := range basics {
		basic.AddChannel(ch)
	}
	workers.Add(func(workersCtx context.Context) {
		select {
		case <-ctx.Done():
		case <-workersCtx.Done():
		}
		for _, basic := range basics {
			basic.RemoveChannel(ch)
		}
	})
	return nil
}
