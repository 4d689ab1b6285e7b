package fetch

import (
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Settings are the user tunable parts of a Task.
type Settings struct {
	Timeout     time.Duration `json:"timeout,omitempty"`
	Retry       RetryPolicy   `json:"retry,omitempty"`
	MinInterval time.Duration `json:"min_interval,omitempty"`
}

// Validate ensures all parts of the settings are valid.
func (s *Settings) Validate(path string) error {
	if s.Timeout < 0 {
		return utils.NewConfigValidationError(path, errors.New("timeout cannot be negative"))
	}
	if s.Retry.Attempts < 0 {
		return utils.NewConfigValidationError(path, errors.New("retry attempts cannot be negative"))
	}
	if s.MinInterval < 0 {
		return utils.NewConfigValidationError(path, errors.New("min_interval cannot be negative"))
	}
	return nil
}

// Options converts the settings into TaskOptions.
func (s *Settings) Options(online func() bool) TaskOptions {
	return TaskOptions{Retry: s.Retry, MinInterval: s.MinInterval, Online: online}
}
