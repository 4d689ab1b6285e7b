package board

import "github.com/pkg/errors"

// NewDigitalInterruptNotFoundError is returned when a board has no interrupt by the given name.
func NewDigitalInterruptNotFoundError(name string) error {
	return errors.Errorf("could not find digital interrupt %q", name)
}
