package fetch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"go.tdeck.dev/pda/logging"
)

// Decoder turns a response body into a value.
type Decoder[T any] func(body []byte) (T, error)

// JSON returns a Decoder that unmarshals a JSON body into T.
func JSON[T any]() Decoder[T] {
	return func(body []byte) (T, error) {
		var out T
		if err := json.Unmarshal(body, &out); err != nil {
			return out, &DecodeError{Cause: err}
		}
		return out, nil
	}
}

// TaskOptions tune a Task. The zero value never retries, never rate limits and assumes the
// device is online.
type TaskOptions struct {
	Retry RetryPolicy
	// MinInterval is the least time between two started fetches.
	MinInterval time.Duration
	// Online is consulted before each fetch.
	Online func() bool
	Clock  clock.Clock
}

// Task binds a Source and a Decoder to a Slot: each Start performs the request and decodes the
// body in the background, and the UI collects the outcome with Poll.
type Task[T any] struct {
	name    string
	source  Source
	decode  Decoder[T]
	slot    *Slot[T]
	limiter *rate.Limiter
	online  func() bool
	retry   exponentialRetry
	clock   clock.Clock
	logger  logging.Logger
}

// NewTask returns a Task named for logging.
func NewTask[T any](name string, source Source, decode Decoder[T], opts TaskOptions, logger logging.Logger) *Task[T] {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	online := opts.Online
	if online == nil {
		online = func() bool { return true }
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	t := &Task[T]{
		name:    name,
		source:  source,
		decode:  decode,
		slot:    NewSlot[T](),
		limiter: rate.NewLimiter(limit, 1),
		online:  online,
		clock:   clk,
		logger:  logger,
	}
	t.retry = exponentialRetry{clock: clk, policy: opts.Retry, fun: source.Fetch}
	return t
}

// Start launches a fetch. It returns ErrNoConnection when offline, ErrAlreadyRunning when a fetch
// is in flight and ErrRateLimited when called again sooner than MinInterval. After Close it
// returns ErrClosed.
func (t *Task[T]) Start() error {
	if t.slot.Closed() {
		return ErrClosed
	}
	if !t.online() {
		return ErrNoConnection
	}
	if t.slot.InFlight() {
		t.logger.Debugw("fetch already in progress", "task", t.name)
		return ErrAlreadyRunning
	}
	if !t.limiter.AllowN(t.clock.Now(), 1) {
		return ErrRateLimited
	}

	logger := t.logger.WithFields("task", t.name, "attempt", uuid.NewString())
	started := t.slot.Start(func(ctx context.Context) (T, error) {
		begin := t.clock.Now()
		logger.Debug("fetch started")
		value, err := t.run(ctx, logger)
		logger.Debugw("fetch finished", "took", t.clock.Since(begin), "error", err)
		return value, err
	}, StatusMessage)
	if !started {
		if t.slot.Closed() {
			return ErrClosed
		}
		t.logger.Debugw("fetch already in progress", "task", t.name)
		return ErrAlreadyRunning
	}
	return nil
}

func (t *Task[T]) run(ctx context.Context, logger logging.Logger) (T, error) {
	var zero T
	body, err := t.retry.run(ctx, logger)
	if err != nil {
		return zero, err
	}
	return t.decode(body)
}

// Ready reports whether a result is waiting, without locking.
func (t *Task[T]) Ready() bool {
	return t.slot.Ready()
}

// InFlight reports whether a fetch is running.
func (t *Task[T]) InFlight() bool {
	return t.slot.InFlight()
}

// Poll consumes the waiting result, if any.
func (t *Task[T]) Poll() (Result[T], bool) {
	return t.slot.Poll()
}

// Close cancels a running fetch.
func (t *Task[T]) Close() {
	t.slot.Close()
}
