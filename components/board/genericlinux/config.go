// Package genericlinux is a board backed by a Linux GPIO character device. Each configured
// interrupt opens one line for falling edge events through mkch's gpio package.
package genericlinux

import (
	"strconv"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/resource"
)

// Model is the character device board model.
var Model = resource.Model("gpiochip")

// DefaultChip is used when no chip device is configured.
const DefaultChip = "/dev/gpiochip0"

// A Config describes a gpiochip board. Interrupt pins are line offsets on the chip.
type Config struct {
	GPIOChip          string                         `json:"gpio_chip,omitempty"`
	Consumer          string                         `json:"consumer,omitempty"`
	DigitalInterrupts []board.DigitalInterruptConfig `json:"digital_interrupts,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, error) {
	if err := board.ValidateDigitalInterrupts(path, conf.DigitalInterrupts); err != nil {
		return nil, err
	}
	for idx, di := range conf.DigitalInterrupts {
		if _, err := lineOffset(di.Pin); err != nil {
			return nil, utils.NewConfigValidationError(
				path+".digital_interrupts."+strconv.Itoa(idx), err)
		}
	}
	return nil, nil
}

func (conf *Config) chip() string {
	if conf.GPIOChip == "" {
		return DefaultChip
	}
	return conf.GPIOChip
}

func (conf *Config) consumer() string {
	if conf.Consumer == "" {
		return "pda-input"
	}
	return conf.Consumer
}

func lineOffset(pin string) (uint32, error) {
	offset, err := strconv.ParseUint(pin, 10, 32)
	if err != nil {
		return 0, errors.Errorf("pin %q is not a gpio line offset", pin)
	}
	return uint32(offset), nil
}
