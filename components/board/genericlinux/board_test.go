package genericlinux

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
	"go.tdeck.dev/pda/utils"
)

func TestConfigValidate(t *testing.T) {
	conf := &Config{DigitalInterrupts: []board.DigitalInterruptConfig{{Name: "up", Pin: "GPIO3"}}}
	_, err := conf.Validate("components.0.attributes")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not a gpio line offset")

	conf = &Config{DigitalInterrupts: []board.DigitalInterruptConfig{{Name: "up", Pin: "3"}}}
	_, err = conf.Validate("components.0.attributes")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.chip(), test.ShouldEqual, DefaultChip)
	test.That(t, conf.consumer(), test.ShouldEqual, "pda-input")

	conf.GPIOChip = "/dev/gpiochip1"
	test.That(t, conf.chip(), test.ShouldEqual, "/dev/gpiochip1")
}

func TestNewBoardWithoutInterrupts(t *testing.T) {
	conf := resource.Config{Name: "local", API: board.API, Model: Model, Attributes: utils.AttributeMap{}}
	test.That(t, conf.Validate("components.0"), test.ShouldBeNil)

	b, err := NewBoard(context.Background(), conf, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.DigitalInterruptNames(), test.ShouldBeEmpty)
	_, err = b.DigitalInterruptByName("up")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, b.Close(context.Background()), test.ShouldBeNil)
}

func TestNewBoardMissingChip(t *testing.T) {
	conf := resource.Config{
		Name:  "local",
		API:   board.API,
		Model: Model,
		Attributes: utils.AttributeMap{
			"gpio_chip": "/dev/does-not-exist",
			"digital_interrupts": []interface{}{
				map[string]interface{}{"name": "up", "pin": "3"},
			},
		},
	}
	test.That(t, conf.Validate("components.0"), test.ShouldBeNil)
	_, err := NewBoard(context.Background(), conf, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
