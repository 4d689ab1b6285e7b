//go:build linux

package genericlinux

import (
	"context"

	"github.com/mkch/gpio"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/components/board"
)

type digitalInterrupt struct {
	interrupt *board.BasicDigitalInterrupt
	line      *gpio.LineWithEvent
}

func (b *Board) createDigitalInterrupt(conf *Config, diConf board.DigitalInterruptConfig) (*digitalInterrupt, error) {
	offset, err := lineOffset(diConf.Pin)
	if err != nil {
		return nil, err
	}

	chip, err := gpio.OpenChip(conf.chip())
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	line, err := chip.OpenLineWithEvents(offset, gpio.Input, gpio.FallingEdge, conf.consumer())
	if err != nil {
		return nil, err
	}

	di := &digitalInterrupt{
		interrupt: board.NewBasicDigitalInterrupt(diConf),
		line:      line,
	}
	b.workers.Add(di.monitor)
	return di, nil
}

func (di *digitalInterrupt) monitor(ctx context.Context) {
	events := di.line.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := di.interrupt.Tick(ctx, event.RisingEdge, uint64(event.Time.UnixNano())); err != nil {
				return
			}
		}
	}
}

func (di *digitalInterrupt) Close() error {
	return di.line.Close()
}
