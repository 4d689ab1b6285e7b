// Package device assembles the handheld: it builds the configured hardware, wires the apps to
// the trackball, keyboard and display, and runs the frame loop.
package device

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/apps/calendar"
	"go.tdeck.dev/pda/apps/mainmenu"
	"go.tdeck.dev/pda/apps/notes"
	"go.tdeck.dev/pda/apps/weather"
	"go.tdeck.dev/pda/components/board/fake"
	"go.tdeck.dev/pda/components/input"
	"go.tdeck.dev/pda/components/input/trackball"
	"go.tdeck.dev/pda/config"
	"go.tdeck.dev/pda/display/console"
	"go.tdeck.dev/pda/fetch"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

const connectivityInterval = 5 * time.Second

// Options are the parts of a Device that do not come from the config file.
type Options struct {
	// Display receives rendered screens.
	Display io.Writer
	// DisplayWidth caps table rows drawn on Display; zero leaves them unbounded.
	DisplayWidth int
	// Headless reads trackball words and keys from Input instead of relying on hardware only.
	Headless bool
	Input    io.Reader
	// RawInput means Input is a terminal in raw mode: arrows move, Enter clicks, other
	// characters are keys and Ctrl-C ends Run.
	RawInput bool
	// Online reports network availability; nil means fetch.InterfaceOnline.
	Online func() bool
	Clock  clock.Clock
	// WatchConfig re-applies log levels when the config file changes.
	WatchConfig bool
	// Debug forces every logger to DEBUG on top of the configured patterns.
	Debug bool
}

// Device is a running handheld.
type Device struct {
	cfg      *config.Config
	opts     Options
	graph    *resource.Graph
	manager  *apps.Manager
	headless *headlessInput
	watcher  *config.Watcher
	logger   logging.Logger
}

// New builds the components and apps described by cfg and shows the main menu.
func New(ctx context.Context, cfg *config.Config, opts Options, logger logging.Logger) (_ *Device, err error) {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Online == nil {
		opts.Online = fetch.InterfaceOnline
	}
	if opts.Display == nil {
		opts.Display = io.Discard
	}
	if err := applyLogConfig(cfg, opts.Debug, false, logger); err != nil {
		return nil, err
	}

	graph, err := resource.Build(ctx, cfg.Components, logger.Sublogger("components"))
	if err != nil {
		return nil, err
	}
	d := &Device{cfg: cfg, opts: opts, graph: graph, logger: logger}
	defer func() {
		if err != nil {
			err = multierr.Combine(err, d.Close(ctx))
		}
	}()

	pointer, err := d.pointer()
	if err != nil {
		return nil, err
	}
	keys, err := d.keys()
	if err != nil {
		return nil, err
	}
	if opts.Headless {
		d.headless, err = d.newHeadless()
		if err != nil {
			return nil, err
		}
		if keys == nil {
			keys = d.headless.keys
		}
	}

	d.manager = apps.NewManager(apps.NewInput(pointer, keys), logger.Sublogger("apps"))
	screen := console.New(opts.Display)
	screen.SetWidth(opts.DisplayWidth)
	if err := d.registerApps(screen); err != nil {
		return nil, err
	}
	if err := d.manager.Show(ctx, apps.MainMenu); err != nil {
		return nil, err
	}

	if opts.WatchConfig && cfg.ConfigFilePath != "" {
		d.watcher, err = config.NewWatcher(cfg.ConfigFilePath, func(newCfg *config.Config) {
			if err := applyLogConfig(newCfg, opts.Debug, true, logger); err != nil {
				logger.Warnw("cannot apply log config", "error", err)
			}
		}, logger.Sublogger("config"))
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// applyLogConfig applies the logger patterns of cfg. Without patterns the current levels are kept
// unless reset is set.
func applyLogConfig(cfg *config.Config, debug, reset bool, logger logging.Logger) error {
	if debug {
		patched := *cfg
		patched.Log = append([]logging.LoggerPatternConfig{{Pattern: "*", Level: "debug"}}, cfg.Log...)
		cfg = &patched
	}
	if len(cfg.Log) == 0 && !reset {
		return nil
	}
	return config.ApplyLogConfig(cfg, logger)
}

func (d *Device) resourceNamed(name string) (resource.Resource, bool) {
	for _, n := range d.graph.Names() {
		if n.Name == name {
			return d.graph.Resource(n)
		}
	}
	return nil, false
}

func (d *Device) pointer() (apps.Pointer, error) {
	res, ok := d.resourceNamed(d.cfg.Device.Trackball)
	if !ok {
		return nil, resource.DependencyNotFoundError(input.Named(d.cfg.Device.Trackball))
	}
	pointer, ok := res.(apps.Pointer)
	if !ok {
		return nil, errors.Errorf("%q is not a trackball", d.cfg.Device.Trackball)
	}
	return pointer, nil
}

func (d *Device) keys() (apps.KeySource, error) {
	if d.cfg.Device.Keyboard == "" {
		return nil, nil
	}
	res, ok := d.resourceNamed(d.cfg.Device.Keyboard)
	if !ok {
		return nil, resource.DependencyNotFoundError(input.Named(d.cfg.Device.Keyboard))
	}
	keys, ok := res.(apps.KeySource)
	if !ok {
		return nil, errors.Errorf("%q is not a keyboard", d.cfg.Device.Keyboard)
	}
	return keys, nil
}

// newHeadless finds the fake board behind the trackball so typed words can tick it.
func (d *Device) newHeadless() (*headlessInput, error) {
	h := &headlessInput{keys: make(keyQueue, keyQueueSize), logger: d.logger.Sublogger("headless")}
	for _, conf := range d.cfg.Components {
		if conf.Name != d.cfg.Device.Trackball {
			continue
		}
		tbConf, err := resource.NativeConfig[*trackball.Config](conf)
		if err != nil {
			return nil, err
		}
		h.interrupts = tbConf.InterruptNames()
		if res, ok := d.resourceNamed(tbConf.Board); ok {
			h.board, _ = res.(*fake.Board)
		}
	}
	if h.board == nil {
		d.logger.Warn("headless mode without a fake trackball board; only keys will be read")
	}
	return h, nil
}

func (d *Device) registerApps(screen *console.Console) error {
	appLogger := d.logger.Sublogger("apps")
	if err := d.manager.Register(mainmenu.New(d.manager, screen.Menu(), appLogger.Sublogger("menu"))); err != nil {
		return err
	}
	if conf := d.cfg.Apps.Notes; conf != nil {
		l := appLogger.Sublogger("notes")
		task := notes.NewTask(*conf, d.opts.Online, l)
		if err := d.manager.Register(notes.New(d.manager, screen.List("Notes"), task, l)); err != nil {
			return err
		}
	}
	if conf := d.cfg.Apps.Calendar; conf != nil {
		l := appLogger.Sublogger("calendar")
		task := calendar.NewTask(*conf, d.opts.Online, l)
		if err := d.manager.Register(calendar.New(d.manager, screen.List("Calendar"), task, l)); err != nil {
			return err
		}
	}
	if conf := d.cfg.Apps.Weather; conf != nil {
		l := appLogger.Sublogger("weather")
		app, err := weather.New(d.manager, screen.Weather(), weather.NewTask(*conf, d.opts.Online, l), *conf, l)
		if err != nil {
			return err
		}
		if err := d.manager.Register(app); err != nil {
			return multierr.Combine(err, app.Close(context.Background()))
		}
	}
	return nil
}

// Manager returns the app manager.
func (d *Device) Manager() *apps.Manager {
	return d.manager
}

// Run runs the frame loop, and the headless reader when enabled, until ctx is done.
func (d *Device) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if d.headless != nil && d.opts.Input != nil {
		now := func() uint64 {
			return uint64(d.opts.Clock.Now().UnixNano())
		}
		// Reads block without a context, so the reader is left to end with the process.
		utils.PanicCapturingGo(func() {
			if d.opts.RawInput {
				d.headless.readRaw(ctx, d.opts.Input, now, cancel)
				return
			}
			d.headless.read(ctx, d.opts.Input, now)
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.frameLoop(gctx, d.cfg.Device.Frame())
	})
	g.Go(func() error {
		return d.connectivityLoop(gctx, connectivityInterval)
	})
	return g.Wait()
}

// connectivityLoop logs network transitions.
func (d *Device) connectivityLoop(ctx context.Context, interval time.Duration) error {
	ticker := d.opts.Clock.Ticker(interval)
	defer ticker.Stop()
	online := d.opts.Online()
	d.logger.Infow("network state", "online", online)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if now := d.opts.Online(); now != online {
				online = now
				d.logger.Infow("network state changed", "online", online)
			}
		}
	}
}

func (d *Device) frameLoop(ctx context.Context, interval time.Duration) error {
	ticker := d.opts.Clock.Ticker(interval)
	defer ticker.Stop()
	d.logger.Infow("frame loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.manager.Handle(ctx)
		}
	}
}

// Close stops the apps and closes the hardware.
func (d *Device) Close(ctx context.Context) error {
	var err error
	if d.watcher != nil {
		err = multierr.Combine(err, d.watcher.Close())
	}
	if d.manager != nil {
		err = multierr.Combine(err, d.manager.Close(ctx))
	}
	return multierr.Combine(err, d.graph.Close(ctx))
}
