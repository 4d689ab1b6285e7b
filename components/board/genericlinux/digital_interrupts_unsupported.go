//go:build !linux

package genericlinux

import (
	"github.com/pkg/errors"

	"go.tdeck.dev/pda/components/board"
)

type digitalInterrupt struct {
	interrupt *board.BasicDigitalInterrupt
}

func (b *Board) createDigitalInterrupt(conf *Config, diConf board.DigitalInterruptConfig) (*digitalInterrupt, error) {
	return nil, errors.Errorf("gpio character devices are only available on linux, cannot open %s", conf.chip())
}

func (di *digitalInterrupt) Close() error {
	return nil
}
