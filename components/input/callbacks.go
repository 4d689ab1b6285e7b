package input

import (
	"context"
	"sync"
	"time"
)

// Callbacks keeps the last event of each control and the callbacks registered for them.
// Controllers embed it to implement Events and RegisterControlCallback.
type Callbacks struct {
	mu         sync.RWMutex
	lastEvents map[Control]Event
	callbacks  map[Control]map[EventType]ControlFunction
}

// NewCallbacks returns Callbacks that report a Connect event for each control.
func NewCallbacks(controls []Control) *Callbacks {
	c := &Callbacks{
		lastEvents: map[Control]Event{},
		callbacks:  map[Control]map[EventType]ControlFunction{},
	}
	now := time.Now()
	for _, control := range controls {
		c.lastEvents[control] = Event{Time: now, Event: Connect, Control: control}
	}
	return c
}

// Events returns a copy of the most recent event of every control.
func (c *Callbacks) Events(ctx context.Context) (map[Control]Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Control]Event, len(c.lastEvents))
	for k, v := range c.lastEvents {
		out[k] = v
	}
	return out, nil
}

// RegisterControlCallback registers a callback that will fire on given EventTypes for a given
// Control. A nil ctrlFunc removes the callback.
func (c *Callbacks) RegisterControlCallback(
	ctx context.Context,
	control Control,
	triggers []EventType,
	ctrlFunc ControlFunction,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.callbacks[control] == nil {
		c.callbacks[control] = make(map[EventType]ControlFunction)
	}
	for _, trigger := range triggers {
		if ctrlFunc == nil {
			delete(c.callbacks[control], trigger)
			continue
		}
		c.callbacks[control][trigger] = ctrlFunc
	}
	return nil
}

// Dispatch records ev as the latest event of its control and calls the matching callbacks.
// Callbacks run on the caller's goroutine, outside the lock.
func (c *Callbacks) Dispatch(ctx context.Context, ev Event) {
	c.mu.Lock()
	c.lastEvents[ev.Control] = ev
	var toCall []ControlFunction
	if fn, ok := c.callbacks[ev.Control][ev.Event]; ok {
		toCall = append(toCall, fn)
	}
	if fn, ok := c.callbacks[ev.Control][AllEvents]; ok {
		toCall = append(toCall, fn)
	}
	c.mu.Unlock()

	for _, fn := range toCall {
		fn(ctx, ev)
	}
}
