// Package mainmenu is the launcher: a 3x3 grid of apps navigated with the trackball.
package mainmenu

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/logging"
	"go.tdeck.dev/pda/resource"
)

const (
	columns = 3
	rows    = 3

	// InitialSelection is the Calendar entry, in the middle of the grid.
	InitialSelection = 4
)

// Entry is one launcher tile.
type Entry struct {
	Name string
	App  apps.ID
}

// Entries are laid out row by row.
var Entries = [rows * columns]Entry{
	{"Calculator", apps.Calculator},
	{"Notes", apps.Notes},
	{"Sketch", apps.Sketch},
	{"Weather", apps.Weather},
	{"Calendar", apps.Calendar},
	{"Map", apps.Map},
	{"Settings", apps.Settings},
	{"Audio", apps.Audio},
	{"About", apps.About},
}

// View draws the grid.
type View interface {
	apps.StatusView
	ShowMenu(names []string, selected int)
	Select(selected int)
}

// Menu is the launcher app.
type Menu struct {
	resource.TriviallyCloseable

	nav      apps.Navigator
	view     View
	selected int
	logger   logging.Logger
}

// New returns a Menu with the initial selection.
func New(nav apps.Navigator, view View, logger logging.Logger) *Menu {
	return &Menu{nav: nav, view: view, selected: InitialSelection, logger: logger}
}

// ID implements apps.App.
func (m *Menu) ID() apps.ID {
	return apps.MainMenu
}

// Selected returns the selected entry index.
func (m *Menu) Selected() int {
	return m.selected
}

// Show implements apps.App.
func (m *Menu) Show(ctx context.Context) error {
	m.view.ShowMenu(lo.Map(Entries[:], func(e Entry, _ int) string { return e.Name }), m.selected)
	m.view.SetStatus("")
	return nil
}

// Handle moves the selection within the grid or launches the selected app.
func (m *Menu) Handle(ctx context.Context, in apps.Input) {
	row, col := m.selected/columns, m.selected%columns
	switch {
	case in.MovedLeft():
		if col > 0 {
			m.move(m.selected - 1)
		}
	case in.MovedRight():
		if col < columns-1 {
			m.move(m.selected + 1)
		}
	case in.MovedUp():
		if row > 0 {
			m.move(m.selected - columns)
		}
	case in.MovedDown():
		if row < rows-1 {
			m.move(m.selected + columns)
		}
	case in.Clicked():
		m.launch(ctx)
	}
}

func (m *Menu) move(to int) {
	m.selected = to
	m.view.Select(to)
}

func (m *Menu) launch(ctx context.Context) {
	entry := Entries[m.selected]
	err := m.nav.Show(ctx, entry.App)
	switch {
	case err == nil:
	case errors.Is(err, apps.ErrNotRegistered):
		m.view.SetStatus(entry.Name + " is not available")
	default:
		m.logger.Warnw("cannot launch app", "app", entry.Name, "error", err)
		m.view.SetStatus(entry.Name + " failed to start")
	}
}
