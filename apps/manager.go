// Package apps holds the screens of the handheld and the manager that switches between them.
// Only the active app receives frames; each frame is expected to return quickly and never block
// on the network.
package apps

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.tdeck.dev/pda/logging"
)

// ID identifies an app.
type ID int

// Known apps. Sketch, Map, Audio and About only appear as menu entries.
const (
	MainMenu ID = iota
	Calculator
	Settings
	Weather
	Notes
	Calendar
	Sketch
	Map
	Audio
	About
)

var idNames = map[ID]string{
	MainMenu:   "MainMenu",
	Calculator: "Calculator",
	Settings:   "Settings",
	Weather:    "Weather",
	Notes:      "Notes",
	Calendar:   "Calendar",
	Sketch:     "Sketch",
	Map:        "Map",
	Audio:      "Audio",
	About:      "About",
}

func (id ID) String() string {
	if name, ok := idNames[id]; ok {
		return name
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// ErrNotRegistered is returned when showing an app nobody registered.
var ErrNotRegistered = errors.New("app not registered")

// App is one screen.
type App interface {
	ID() ID
	// Show is called each time the app becomes active.
	Show(ctx context.Context) error
	// Handle runs one frame.
	Handle(ctx context.Context, in Input)
	Close(ctx context.Context) error
}

// Navigator switches the active app.
type Navigator interface {
	Show(ctx context.Context, id ID) error
}

// StatusView shows a one-line status message.
type StatusView interface {
	SetStatus(status string)
}

// Manager owns the registered apps and dispatches frames to the active one.
type Manager struct {
	mu      sync.Mutex
	apps    map[ID]App
	current ID
	active  bool

	input  Input
	logger logging.Logger
}

// NewManager returns a Manager reading from in.
func NewManager(in Input, logger logging.Logger) *Manager {
	return &Manager{
		apps:   map[ID]App{},
		input:  in,
		logger: logger,
	}
}

// Register adds an app. Registering the same ID twice is an error.
func (m *Manager) Register(app App) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID()]; ok {
		return errors.Errorf("app %s already registered", app.ID())
	}
	m.apps[app.ID()] = app
	return nil
}

// Show makes id the active app and calls its Show. On error the previous app stays active.
func (m *Manager) Show(ctx context.Context, id ID) error {
	m.mu.Lock()
	app, ok := m.apps[id]
	m.mu.Unlock()
	if !ok {
		return errors.Wrap(ErrNotRegistered, id.String())
	}

	if err := app.Show(ctx); err != nil {
		return errors.Wrapf(err, "showing %s", id)
	}

	m.mu.Lock()
	m.current = id
	m.active = true
	m.mu.Unlock()
	m.logger.Debugw("app shown", "app", id)
	return nil
}

// Current returns the active app's ID.
func (m *Manager) Current() (ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.active
}

// Handle runs one frame of the active app. It is a no-op before the first Show.
func (m *Manager) Handle(ctx context.Context) {
	m.mu.Lock()
	app, ok := m.apps[m.current]
	active := m.active
	m.mu.Unlock()
	if !active || !ok {
		return
	}
	app.Handle(ctx, m.input)
}

// Close closes every registered app.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	for _, app := range m.apps {
		err = multierr.Combine(err, app.Close(ctx))
	}
	m.apps = map[ID]App{}
	m.active = false
	return err
}
