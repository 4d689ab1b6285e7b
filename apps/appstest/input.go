// Package appstest provides fakes for exercising apps without hardware.
package appstest

import "sync"

// Move is one trackball burst.
type Move int

// Trackball bursts.
const (
	None Move = iota
	Up
	Down
	Left
	Right
	Click
)

// Input is a scripted apps.Input. Like the real trackball, a burst is consumed by the first
// method that matches it.
type Input struct {
	mu      sync.Mutex
	pending Move
	keys    []byte
}

// Move queues a burst, replacing any unconsumed one.
func (in *Input) Move(m Move) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = m
}

// Type queues keys.
func (in *Input) Type(keys ...byte) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys = append(in.keys, keys...)
}

func (in *Input) consume(m Move) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.pending != m {
		return false
	}
	in.pending = None
	return true
}

// MovedUp implements apps.Pointer.
func (in *Input) MovedUp() bool { return in.consume(Up) }

// MovedDown implements apps.Pointer.
func (in *Input) MovedDown() bool { return in.consume(Down) }

// MovedLeft implements apps.Pointer.
func (in *Input) MovedLeft() bool { return in.consume(Left) }

// MovedRight implements apps.Pointer.
func (in *Input) MovedRight() bool { return in.consume(Right) }

// Clicked implements apps.Pointer.
func (in *Input) Clicked() bool { return in.consume(Click) }

// Key implements apps.KeySource.
func (in *Input) Key() (byte, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if len(in.keys) == 0 {
		return 0, false
	}
	k := in.keys[0]
	in.keys = in.keys[1:]
	return k, true
}

// Status records SetStatus calls.
type Status struct {
	mu       sync.Mutex
	statuses []string
}

// SetStatus implements apps.StatusView.
func (s *Status) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

// Last returns the most recent status.
func (s *Status) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.statuses) == 0 {
		return ""
	}
	return s.statuses[len(s.statuses)-1]
}

// All returns every status set so far.
func (s *Status) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statuses...)
}
