// Package notes shows a task list served by a script endpoint as {"items":[{"id","title"}]}.
package notes

import (
	"context"

	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/fetch"
	"go.tdeck.dev/pda/logging"
	rutils "go.tdeck.dev/pda/utils"
)

const (
	statusUpdating = "Updating tasks..."
	statusEmpty    = "No tasks."
)

// Item is one task.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type response struct {
	Items []Item `json:"items"`
}

// Config points the app at its endpoint.
type Config struct {
	URL   string         `json:"url"`
	Fetch fetch.Settings `json:"fetch,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.URL == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "url")
	}
	return conf.Fetch.Validate(path + ".fetch")
}

// Decode parses a task list and sanitizes titles for the display font.
func Decode(body []byte) ([]Item, error) {
	resp, err := fetch.JSON[response]()(body)
	if err != nil {
		return nil, err
	}
	return lo.Map(resp.Items, func(it Item, _ int) Item {
		it.Title = rutils.SanitizeString(it.Title)
		return it
	}), nil
}

// NewTask returns the fetch task for conf.
func NewTask(conf Config, online func() bool, logger logging.Logger) *fetch.Task[[]Item] {
	return fetch.NewTask("notes", fetch.NewHTTPSource(conf.URL, conf.Fetch.Timeout), Decode, conf.Fetch.Options(online), logger)
}

// View draws the list.
type View interface {
	apps.StatusView
	SetItems(titles []string, selected int)
}

// App is the notes screen.
type App struct {
	nav      apps.Navigator
	view     View
	task     *fetch.Task[[]Item]
	items    []Item
	selected int
	logger   logging.Logger
}

// New returns the notes app.
func New(nav apps.Navigator, view View, task *fetch.Task[[]Item], logger logging.Logger) *App {
	return &App{nav: nav, view: view, task: task, logger: logger}
}

// ID implements apps.App.
func (a *App) ID() apps.ID {
	return apps.Notes
}

// Items returns the last fetched list.
func (a *App) Items() []Item {
	return a.items
}

// Show redraws the cached list and starts a refresh.
func (a *App) Show(ctx context.Context) error {
	a.redraw()
	a.refresh()
	return nil
}

func (a *App) refresh() {
	apps.Refresh(a.task, a.view, statusUpdating, a.logger)
}

// Handle collects a finished fetch and reacts to input.
func (a *App) Handle(ctx context.Context, in apps.Input) {
	if res, ok := a.task.Poll(); ok {
		a.apply(res)
	}

	if key, ok := in.Key(); ok && (key == 'r' || key == 'R') {
		a.refresh()
		return
	}
	switch {
	case in.MovedLeft():
		if err := a.nav.Show(ctx, apps.MainMenu); err != nil {
			a.logger.Warnw("cannot return to menu", "error", err)
		}
	case in.MovedUp():
		a.move(-1)
	case in.MovedDown():
		a.move(1)
	case in.Clicked():
		a.refresh()
	}
}

func (a *App) apply(res fetch.Result[[]Item]) {
	if !res.OK() {
		a.logger.Debugw("notes fetch failed", "error", res.Err)
		a.view.SetStatus(res.Status)
		return
	}
	a.items = res.Value
	a.selected = rutils.Clamp(a.selected, 0, max(len(a.items)-1, 0))
	a.redraw()
	if len(a.items) == 0 {
		a.view.SetStatus(statusEmpty)
	} else {
		a.view.SetStatus("")
	}
}

func (a *App) move(by int) {
	if len(a.items) == 0 {
		return
	}
	a.selected = rutils.Clamp(a.selected+by, 0, len(a.items)-1)
	a.redraw()
}

func (a *App) redraw() {
	a.view.SetItems(lo.Map(a.items, func(it Item, _ int) string { return it.Title }), a.selected)
}

// Close cancels a running fetch.
func (a *App) Close(ctx context.Context) error {
	a.task.Close()
	return nil
}
