package trackball

import (
	"time"

	"go.uber.org/atomic"
)

// Source is one of the five trackball switches.
type Source int

// The trackball switches.
const (
	Up Source = iota
	Down
	Left
	Right
	Click
	numSources
)

func (s Source) String() string {
	switch s {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Click:
		return "click"
	}
	return "unknown"
}

const (
	// DefaultShift is the acceleration applied per direction edge.
	DefaultShift = 4
	// DefaultMaxDelta bounds the magnitude reported for one direction.
	DefaultMaxDelta = 32767
)

// Delta is the movement accumulated since the previous read.
type Delta struct {
	DX     int32
	DY     int32
	Clicks int32
}

// IsZero reports whether nothing happened.
func (d Delta) IsZero() bool {
	return d.DX == 0 && d.DY == 0 && d.Clicks == 0
}

// Counter accumulates trackball edges. Record may be called from any goroutine and only performs
// atomic operations. The read side has two modes: the Moved*/Clicked queries, which consume the
// whole pending burst when they fire, and ReadDelta. One consumer should use one mode.
type Counter struct {
	shift    uint
	maxDelta int32
	debounce int64

	interrupted atomic.Bool
	counts      [numSources]atomic.Int32
	lastEdge    [numSources]atomic.Int64
}

// NewCounter returns a Counter. A direction with n pending edges reports (1<<(shift*n))-1,
// saturating at maxDelta; shift 0 reports n. Edges of one source closer together than
// debounce are dropped; zero disables debouncing.
func NewCounter(shift uint, maxDelta int32, debounce time.Duration) *Counter {
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return &Counter{shift: shift, maxDelta: maxDelta, debounce: int64(debounce)}
}

// Record registers one falling edge of src observed at nanos. It returns false if the edge was
// debounced away.
func (c *Counter) Record(src Source, nanos int64) bool {
	if src < 0 || src >= numSources {
		return false
	}
	if c.debounce > 0 {
		for {
			last := c.lastEdge[src].Load()
			if last != 0 && nanos-last < c.debounce {
				return false
			}
			if c.lastEdge[src].CompareAndSwap(last, nanos) {
				break
			}
		}
	}
	c.counts[src].Inc()
	c.interrupted.Store(true)
	return true
}

// Pending returns the raw number of edges of src waiting to be consumed.
func (c *Counter) Pending(src Source) int32 {
	return c.counts[src].Load()
}

// Interrupted reports whether any edge arrived since the last clear.
func (c *Counter) Interrupted() bool {
	return c.interrupted.Load()
}

// MovedUp reports an upward movement, consuming all pending events when it does.
func (c *Counter) MovedUp() bool { return c.moved(Up) }

// MovedDown reports a downward movement, consuming all pending events when it does.
func (c *Counter) MovedDown() bool { return c.moved(Down) }

// MovedLeft reports a leftward movement, consuming all pending events when it does.
func (c *Counter) MovedLeft() bool { return c.moved(Left) }

// MovedRight reports a rightward movement, consuming all pending events when it does.
func (c *Counter) MovedRight() bool { return c.moved(Right) }

// Clicked reports a click, consuming all pending events when it does.
func (c *Counter) Clicked() bool { return c.moved(Click) }

func (c *Counter) moved(src Source) bool {
	if !c.interrupted.Load() || c.counts[src].Load() == 0 {
		return false
	}
	c.Clear()
	return true
}

// ReadDelta returns the movement since the previous read and clears it. Without any pending edge
// it returns the zero Delta.
func (c *Counter) ReadDelta() Delta {
	if !c.interrupted.Load() {
		return Delta{}
	}
	counts := c.drain()
	return Delta{
		DX:     c.magnitude(counts[Right]) - c.magnitude(counts[Left]),
		DY:     c.magnitude(counts[Down]) - c.magnitude(counts[Up]),
		Clicks: counts[Click],
	}
}

// Clear drops every pending edge.
func (c *Counter) Clear() {
	c.drain()
}

// drain lowers the flag before swapping the counters so that an edge racing with the drain is
// either returned here or leaves the flag raised for the next read.
func (c *Counter) drain() [numSources]int32 {
	var out [numSources]int32
	c.interrupted.Store(false)
	for i := range c.counts {
		out[i] = c.counts[i].Swap(0)
	}
	return out
}

func (c *Counter) magnitude(n int32) int32 {
	if n <= 0 {
		return 0
	}
	if c.shift == 0 {
		return min(n, c.maxDelta)
	}
	bits := uint64(c.shift) * uint64(n)
	if bits >= 31 {
		return c.maxDelta
	}
	return min(int32(1<<bits)-1, c.maxDelta)
}
