package trackball

import (
	"context"
	"sync"
	"testing"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.tdeck.dev/pda/components/board"
	"go.tdeck.dev/pda/components/board/fake"
	"go.tdeck.dev/pda/components/input"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
	"go.tdeck.dev/pda/utils"
)

func setup(t *testing.T, attrs utils.AttributeMap) (*fake.Board, *Trackball) {
	t.Helper()
	logger := logging.NewTestLogger(t)

	var interrupts []interface{}
	for _, name := range []string{"up", "down", "left", "right", "click", "spare"} {
		interrupts = append(interrupts, map[string]interface{}{"name": name, "pin": name})
	}
	boardConf := resource.Config{
		Name:       "local",
		API:        board.API,
		Model:      fake.Model,
		Attributes: utils.AttributeMap{"digital_interrupts": interrupts},
	}
	test.That(t, boardConf.Validate("components.0"), test.ShouldBeNil)
	b, err := fake.NewBoard(context.Background(), boardConf, logger)
	test.That(t, err, test.ShouldBeNil)

	if attrs == nil {
		attrs = utils.AttributeMap{}
	}
	attrs["board"] = "local"
	conf := resource.Config{Name: "trackball", API: input.API, Model: Model, Attributes: attrs}
	test.That(t, conf.Validate("components.1"), test.ShouldBeNil)
	test.That(t, conf.ImplicitDependsOn, test.ShouldResemble, []string{"local"})

	deps := resource.Dependencies{board.Named("local"): b}
	tb, err := NewTrackball(context.Background(), deps, conf, logger)
	test.That(t, err, test.ShouldBeNil)

	t.Cleanup(func() {
		test.That(t, tb.Close(context.Background()), test.ShouldBeNil)
		test.That(t, b.Close(context.Background()), test.ShouldBeNil)
	})
	return b, tb
}

func TestTrackballMenuMode(t *testing.T) {
	b, tb := setup(t, nil)
	ctx := context.Background()

	test.That(t, tb.Name(), test.ShouldResemble, input.Named("trackball"))
	test.That(t, b.Tick(ctx, "up", 1), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb2 testing.TB) {
		tb2.Helper()
		test.That(tb2, tb.Pending(Up), test.ShouldEqual, 1)
	})
	test.That(t, tb.MovedDown(), test.ShouldBeFalse)
	test.That(t, tb.MovedUp(), test.ShouldBeTrue)
	test.That(t, tb.MovedUp(), test.ShouldBeFalse)
}

func TestTrackballDeltaMode(t *testing.T) {
	b, tb := setup(t, utils.AttributeMap{"track_speed": 0})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		test.That(t, b.Tick(ctx, "right", uint64(i+1)), test.ShouldBeNil)
	}
	test.That(t, b.Tick(ctx, "click", 10), test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb2 testing.TB) {
		tb2.Helper()
		test.That(tb2, tb.Pending(Click), test.ShouldEqual, 1)
	})
	test.That(t, tb.ReadDelta(), test.ShouldResemble, Delta{DX: 3, Clicks: 1})
}

func TestTrackballIgnoresRisingEdgesAndOtherPins(t *testing.T) {
	b, tb := setup(t, nil)
	ctx := context.Background()

	test.That(t, b.Digitals["up"].Tick(ctx, true, 1), test.ShouldBeNil)
	test.That(t, b.Tick(ctx, "spare", 2), test.ShouldBeNil)
	test.That(t, b.Tick(ctx, "click", 3), test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb2 testing.TB) {
		tb2.Helper()
		test.That(tb2, tb.Pending(Click), test.ShouldEqual, 1)
	})
	test.That(t, tb.Pending(Up), test.ShouldEqual, 0)
}

func TestTrackballCallbacks(t *testing.T) {
	b, tb := setup(t, utils.AttributeMap{"debounce": "5ms"})
	ctx := context.Background()

	var mu sync.Mutex
	var got []input.Event
	err := tb.RegisterControlCallback(ctx, input.ButtonClick, []input.EventType{input.ButtonPress},
		func(ctx context.Context, ev input.Event) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, ev)
		})
	test.That(t, err, test.ShouldBeNil)

	const ms = uint64(1e6)
	test.That(t, b.Tick(ctx, "click", 100*ms), test.ShouldBeNil)
	test.That(t, b.Tick(ctx, "click", 101*ms), test.ShouldBeNil) // bounce
	test.That(t, b.Tick(ctx, "click", 110*ms), test.ShouldBeNil)

	testutils.WaitForAssertion(t, func(tb2 testing.TB) {
		tb2.Helper()
		mu.Lock()
		defer mu.Unlock()
		test.That(tb2, len(got), test.ShouldEqual, 2)
	})
	mu.Lock()
	test.That(t, got[0].Control, test.ShouldEqual, input.ButtonClick)
	test.That(t, got[1].Value, test.ShouldEqual, 2.0)
	mu.Unlock()

	events, err := tb.Events(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, events[input.ButtonClick].Event, test.ShouldEqual, input.ButtonPress)
	test.That(t, events[input.ButtonUp].Event, test.ShouldEqual, input.Connect)

	controls, err := tb.Controls(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(controls), test.ShouldEqual, 5)
}

func TestTrackballMissingDependencies(t *testing.T) {
	logger := logging.NewTestLogger(t)
	conf := resource.Config{
		Name: "trackball", API: input.API, Model: Model,
		Attributes: utils.AttributeMap{"board": "local"},
	}
	test.That(t, conf.Validate("components.1"), test.ShouldBeNil)
	_, err := NewTrackball(context.Background(), resource.Dependencies{}, conf, logger)
	test.That(t, err, test.ShouldNotBeNil)

	b, err := fake.NewBoard(context.Background(), resource.Config{
		Name: "local", API: board.API, Model: fake.Model, ConvertedAttributes: &fake.Config{},
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	_, err = NewTrackball(context.Background(), resource.Dependencies{board.Named("local"): b}, conf, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "could not find digital interrupt")
}

func TestConfigValidate(t *testing.T) {
	conf := &Config{}
	_, err := conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	speed := 16
	conf = &Config{Board: "local", TrackSpeed: &speed}
	_, err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)

	conf = &Config{Board: "local", Up: "left"}
	_, err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"left"`)

	conf = &Config{Board: "local"}
	deps, err := conf.Validate("path")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, deps, test.ShouldResemble, []string{"local"})
	test.That(t, conf.shift(), test.ShouldEqual, DefaultShift)

	speed = 0
	conf.TrackSpeed = &speed
	test.That(t, conf.shift(), test.ShouldEqual, 0)
}
