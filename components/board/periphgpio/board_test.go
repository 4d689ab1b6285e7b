package periphgpio

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
	"go.tdeck.dev/pda/utils"
)

func testConfig(t *testing.T, attrs utils.AttributeMap) resource.Config {
	t.Helper()
	conf := resource.Config{Name: "local", API: board.API, Model: Model, Attributes: attrs}
	test.That(t, conf.Validate("components.0"), test.ShouldBeNil)
	return conf
}

func TestStreamFallingEdges(t *testing.T) {
	up := &gpiotest.Pin{N: "GPIO3", Num: 3, L: gpio.High, EdgesChan: make(chan gpio.Level, 4)}
	pins := map[string]gpio.PinIO{"GPIO3": up}

	conf := testConfig(t, utils.AttributeMap{
		"edge_timeout": "5ms",
		"digital_interrupts": []interface{}{
			map[string]interface{}{"name": "up", "pin": "GPIO3"},
		},
	})
	b, err := NewBoard(context.Background(), conf, logging.NewTestLogger(t), func(name string) gpio.PinIO {
		return pins[name]
	})
	test.That(t, err, test.ShouldBeNil)
	defer func() { test.That(t, b.Close(context.Background()), test.ShouldBeNil) }()
	test.That(t, up.P, test.ShouldEqual, gpio.PullUp)

	di, err := b.DigitalInterruptByName("up")
	test.That(t, err, test.ShouldBeNil)
	ch := make(chan board.Tick, 4)
	test.That(t, b.StreamTicks(context.Background(), []board.DigitalInterrupt{di}, ch), test.ShouldBeNil)

	up.EdgesChan <- gpio.Low
	select {
	case tick := <-ch:
		test.That(t, tick.Name, test.ShouldEqual, "up")
		test.That(t, tick.High, test.ShouldBeFalse)
		test.That(t, tick.TimestampNanosec, test.ShouldBeGreaterThan, 0)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}
}

// releasedPin reads high again by the time the edge is reported.
type releasedPin struct {
	*gpiotest.Pin
}

func (p releasedPin) Read() gpio.Level {
	return gpio.High
}

func TestFallingEdgeAfterRelease(t *testing.T) {
	click := releasedPin{&gpiotest.Pin{N: "GPIO0", Num: 0, L: gpio.High, EdgesChan: make(chan gpio.Level, 4)}}
	conf := testConfig(t, utils.AttributeMap{
		"edge_timeout": "5ms",
		"digital_interrupts": []interface{}{
			map[string]interface{}{"name": "click", "pin": "GPIO0"},
		},
	})
	b, err := NewBoard(context.Background(), conf, logging.NewTestLogger(t), func(string) gpio.PinIO {
		return click
	})
	test.That(t, err, test.ShouldBeNil)
	defer func() { test.That(t, b.Close(context.Background()), test.ShouldBeNil) }()

	di, err := b.DigitalInterruptByName("click")
	test.That(t, err, test.ShouldBeNil)
	ch := make(chan board.Tick, 4)
	test.That(t, b.StreamTicks(context.Background(), []board.DigitalInterrupt{di}, ch), test.ShouldBeNil)

	click.EdgesChan <- gpio.Low
	select {
	case tick := <-ch:
		test.That(t, tick.Name, test.ShouldEqual, "click")
		test.That(t, tick.High, test.ShouldBeFalse)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick delivered")
	}
}

func TestMissingPin(t *testing.T) {
	conf := testConfig(t, utils.AttributeMap{
		"pull": "down",
		"digital_interrupts": []interface{}{
			map[string]interface{}{"name": "up", "pin": "GPIO99"},
		},
	})
	_, err := NewBoard(context.Background(), conf, logging.NewTestLogger(t), func(string) gpio.PinIO { return nil })
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "GPIO99")
}

func TestConfigValidate(t *testing.T) {
	conf := &Config{Pull: "sideways"}
	_, err := conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	conf = &Config{EdgeTimeout: -time.Second}
	_, err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	for _, pull := range []string{"", "up", "DOWN", "none"} {
		conf = &Config{Pull: pull}
		_, err = conf.Validate("path")
		test.That(t, err, test.ShouldBeNil)
	}
}
