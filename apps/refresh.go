package apps

import (
	"github.com/pkg/errors"

	"go.tdeck.dev/pda/fetch"
	"go.tdeck.dev/pda/logging"
)

// Refresh starts task and reports the outcome on view: pending when the fetch started, the
// offline message when there is no connection. A refused start (busy, rate limited or closed)
// leaves the status alone.
func Refresh[T any](task *fetch.Task[T], view StatusView, pending string, logger logging.Logger) {
	err := task.Start()
	switch {
	case err == nil:
		view.SetStatus(pending)
	case errors.Is(err, fetch.ErrNoConnection):
		view.SetStatus(fetch.StatusMessage(err))
	case errors.Is(err, fetch.ErrAlreadyRunning), errors.Is(err, fetch.ErrRateLimited), errors.Is(err, fetch.ErrClosed):
		logger.Debugw("refresh skipped", "reason", err)
	default:
		logger.Warnw("refresh failed", "error", err)
		view.SetStatus(fetch.StatusMessage(err))
	}
}
