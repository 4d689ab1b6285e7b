package fetch

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoConnection is returned when the device has no usable network.
var ErrNoConnection = errors.New("No Wi-Fi connection")

// ErrAlreadyRunning is returned when a fetch is requested while one is in flight.
var ErrAlreadyRunning = errors.New("fetch already in progress")

// ErrRateLimited is returned when fetches are requested faster than allowed.
var ErrRateLimited = errors.New("fetch rate limited")

// ErrClosed is returned when a fetch is requested after Close.
var ErrClosed = errors.New("fetch task closed")

// StatusError is a response with a status other than 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.Code)
}

// Temporary reports whether retrying may help.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == 429
}

// TransportError is a request that produced no response at all.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP error: %v", e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// DecodeError is a response body that could not be decoded.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return "JSON parse error"
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// StatusMessage turns a fetch error into the text shown to the user.
func StatusMessage(err error) string {
	var statusErr *StatusError
	var transportErr *TransportError
	var decodeErr *DecodeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.As(err, &decodeErr):
		return decodeErr.Error()
	case errors.As(err, &transportErr):
		return "HTTP error: request failed"
	case errors.Is(err, ErrNoConnection):
		return ErrNoConnection.Error()
	default:
		return err.Error()
	}
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	var statusErr *StatusError
	var transportErr *TransportError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Temporary()
	case errors.As(err, &transportErr):
		return true
	default:
		return false
	}
}
