package fetch

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"go.tdeck.dev/pda/logging"
)

const (
	defaultInitialWait = 500 * time.Millisecond
	retryFactor        = 2
	maxRetryInterval   = 30 * time.Second
)

// RetryPolicy bounds retries of transient failures (no response, 5xx, 429). Attempts counts the
// first try; one or less disables retrying.
type RetryPolicy struct {
	Attempts    int           `json:"attempts,omitempty"`
	InitialWait time.Duration `json:"initial_wait,omitempty"`
}

type exponentialRetry struct {
	clock  clock.Clock
	policy RetryPolicy
	fun    func(context.Context) ([]byte, error)
}

// run calls fun and retries transient errors with exponentially increasing waits. It returns the
// last error once attempts are exhausted, a non retryable error, or ctx's error.
func (er exponentialRetry) run(ctx context.Context, logger logging.Logger) ([]byte, error) {
	body, err := er.fun(ctx)
	if err == nil || !retryable(err) || er.policy.Attempts <= 1 {
		return body, err
	}

	nextWait := er.policy.InitialWait
	if nextWait <= 0 {
		nextWait = defaultInitialWait
	}
	for try := 2; try <= er.policy.Attempts; try++ {
		logger.Debugw("retrying fetch", "try", try, "wait", nextWait, "error", err)
		timer := er.clock.Timer(nextWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		body, err = er.fun(ctx)
		if err == nil || !retryable(err) {
			return body, err
		}
		nextWait = getNextWait(nextWait)
	}
	logger.Debugw("fetch retries exhausted", "error", err)
	return nil, err
}

func getNextWait(lastWait time.Duration) time.Duration {
	nextWait := lastWait * retryFactor
	if nextWait > maxRetryInterval {
		return maxRetryInterval
	}
	return nextWait
}
