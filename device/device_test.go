package device

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.tdeck.dev/pda/apps"
	_ "go.tdeck.dev/pda/components/register"
	"go.tdeck.dev/pda/config"
	"go.tdeck.dev/pda/logging"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

const deviceConfig = `{
  components: [
    {name: "local", api: "board", model: "fake", attributes: {digital_interrupts: [
      {name: "up", pin: "1"}, {name: "down", pin: "2"}, {name: "left", pin: "3"},
      {name: "right", pin: "4"}, {name: "click", pin: "5"},
    ]}},
    {name: "trackball", api: "input", model: "tdeck-trackball", attributes: {board: "local"}},
  ],
  device: {trackball: "trackball"},
  apps: {notes: {url: "NOTES_URL"}},
}`

func newTestDevice(t *testing.T, in io.Reader, display io.Writer, mock clock.Clock) *Device {
	t.Helper()
	logger := logging.NewTestLogger(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"id":"1","title":"Comprar pão"}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.FromBytes([]byte(strings.Replace(deviceConfig, "NOTES_URL", srv.URL, 1)))
	test.That(t, err, test.ShouldBeNil)

	d, err := New(context.Background(), cfg, Options{
		Display:  display,
		Headless: true,
		Input:    in,
		Online:   func() bool { return true },
		Clock:    mock,
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() {
		test.That(t, d.Close(context.Background()), test.ShouldBeNil)
	})
	return d
}

func TestDeviceHeadlessNavigation(t *testing.T) {
	color.NoColor = true
	display := &lockedBuffer{}
	inR, inW := io.Pipe()
	defer inW.Close()
	mock := clock.NewMock()
	d := newTestDevice(t, inR, display, mock)

	current, _ := d.Manager().Current()
	test.That(t, current, test.ShouldEqual, apps.MainMenu)
	test.That(t, display.String(), test.ShouldContainSubstring, "[Calendar]")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	step := func(tb testing.TB) {
		tb.Helper()
		mock.Add(5 * time.Millisecond)
	}

	_, err := inW.Write([]byte("up\n"))
	test.That(t, err, test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		step(tb)
		test.That(tb, display.String(), test.ShouldContainSubstring, "[Notes]")
	})

	_, err = inW.Write([]byte("click\n"))
	test.That(t, err, test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		step(tb)
		test.That(tb, display.String(), test.ShouldContainSubstring, "Comprar pao")
	})
	current, _ = d.Manager().Current()
	test.That(t, current, test.ShouldEqual, apps.Notes)

	_, err = inW.Write([]byte("left\n"))
	test.That(t, err, test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		step(tb)
		current, _ := d.Manager().Current()
		test.That(tb, current, test.ShouldEqual, apps.MainMenu)
	})

	cancel()
	test.That(t, <-done, test.ShouldBeNil)
}

func TestDeviceUnavailableApp(t *testing.T) {
	color.NoColor = true
	display := &lockedBuffer{}
	d := newTestDevice(t, nil, display, clock.NewMock())

	// Calendar has no settings, so it is not registered.
	in := d.headless
	in.handleWord(context.Background(), "click", 0)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		d.Manager().Handle(context.Background())
		test.That(tb, display.String(), test.ShouldContainSubstring, "Calendar is not available")
	})
}

func TestHeadlessKeys(t *testing.T) {
	logger := logging.NewTestLogger(t)
	h := &headlessInput{keys: make(keyQueue, 2), logger: logger}
	h.read(context.Background(), strings.NewReader("r x toolong y"), func() uint64 { return 0 })

	k, ok := h.keys.Key()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, k, test.ShouldEqual, byte('r'))
	k, ok = h.keys.Key()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, k, test.ShouldEqual, byte('x'))
	// queue of two: y was dropped
	_, ok = h.keys.Key()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestHeadlessLettersAreKeys(t *testing.T) {
	logger := logging.NewTestLogger(t)
	h := &headlessInput{keys: make(keyQueue, 8), logger: logger}
	h.read(context.Background(), strings.NewReader("u d l c"), func() uint64 { return 0 })

	var typed []byte
	for {
		k, ok := h.keys.Key()
		if !ok {
			break
		}
		typed = append(typed, k)
	}
	test.That(t, string(typed), test.ShouldEqual, "udlc")
}

func TestHeadlessRawArrowsAndKeys(t *testing.T) {
	color.NoColor = true
	display := &lockedBuffer{}
	d := newTestDevice(t, nil, display, clock.NewMock())

	var stopped bool
	d.headless.readRaw(context.Background(), strings.NewReader("\x1b[Au\x03x"), func() uint64 { return 0 },
		func() { stopped = true })
	test.That(t, stopped, test.ShouldBeTrue)

	k, ok := d.headless.keys.Key()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, k, test.ShouldEqual, byte('u'))
	// Reading ends at Ctrl-C.
	_, ok = d.headless.keys.Key()
	test.That(t, ok, test.ShouldBeFalse)

	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		d.Manager().Handle(context.Background())
		test.That(tb, display.String(), test.ShouldContainSubstring, "[Notes]")
	})
}

func TestHeadlessRawEnterClicks(t *testing.T) {
	color.NoColor = true
	display := &lockedBuffer{}
	d := newTestDevice(t, nil, display, clock.NewMock())

	d.headless.readRaw(context.Background(), strings.NewReader("\r"), func() uint64 { return 0 }, func() {})
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		d.Manager().Handle(context.Background())
		test.That(tb, display.String(), test.ShouldContainSubstring, "Calendar is not available")
	})
}

func TestDeviceRejectsNonTrackball(t *testing.T) {
	logger := logging.NewTestLogger(t)
	cfg, err := config.FromBytes([]byte(`{
  components: [{name: "local", api: "board", model: "fake"}],
  device: {trackball: "local"},
}`))
	test.That(t, err, test.ShouldBeNil)
	_, err = New(context.Background(), cfg, Options{Online: func() bool { return true }, Clock: clock.NewMock()}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not a trackball")
}
