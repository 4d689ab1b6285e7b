// Package calendar lists upcoming events served as {"items":[{"id","title","startTime"}]}.
package calendar

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/fetch"
	"go.tdeck.dev/pda/logging"
	rutils "go.tdeck.dev/pda/utils"
)

// StartTimeLayout is the format of startTime, in local time.
const StartTimeLayout = "2006-01-02T15:04:05"

const (
	statusUpdating = "Updating events..."
	statusEmpty    = "No events."
	lineLayout     = "Jan 02 15:04"
)

// Event is one calendar entry. Start is zero when startTime could not be parsed.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime string    `json:"startTime"`
	Start     time.Time `json:"-"`
}

// Line is how the event is listed.
func (e Event) Line() string {
	if e.Start.IsZero() {
		return "--- " + e.Title
	}
	return e.Start.Format(lineLayout) + " " + e.Title
}

type response struct {
	Items []Event `json:"items"`
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

// Decode parses events and orders them by start time. Events whose start cannot be parsed go
// last, in the order they were served.
func Decode(body []byte) ([]Event, error) {
	resp, err := fetch.JSON[response]()(body)
	if err != nil {
		return nil, err
	}
	events := lo.Map(resp.Items, func(e Event, _ int) Event {
		e.Title = rutils.SanitizeString(e.Title)
		if start, err := time.ParseInLocation(StartTimeLayout, e.StartTime, time.Local); err == nil {
			e.Start = start
		}
		return e
	})
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Start, events[j].Start
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
	return events, nil
}

// NewTask returns the fetch task for conf.
func NewTask(conf Config, online func() bool, logger logging.Logger) *fetch.Task[[]Event] {
	return fetch.NewTask("calendar", fetch.NewHTTPSource(conf.URL, conf.Fetch.Timeout), Decode, conf.Fetch.Options(online), logger)
}

// View draws the event list.
type View interface {
	apps.StatusView
	SetEvents(lines []string, selected int)
}

// App is the calendar screen.
type App struct {
	nav      apps.Navigator
	view     View
	task     *fetch.Task[[]Event]
	events   []Event
	selected int
	logger   logging.Logger
}

// New returns the calendar app.
func New(nav apps.Navigator, view View, task *fetch.Task[[]Event], logger logging.Logger) *App {
	return &App{nav: nav, view: view, task: task, logger: logger}
}

// ID implements apps.App.
func (a *App) ID() apps.ID {
	return apps.Calendar
}

// Events returns the last fetched events in display order.
func (a *App) Events() []Event {
	return a.events
}

// Show redraws the cached events and starts a refresh.
func (a *App) Show(ctx context.Context) error {
	a.redraw()
	apps.Refresh(a.task, a.view, statusUpdating, a.logger)
	return nil
}

// Handle collects a finished fetch and reacts to input.
func (a *App) Handle(ctx context.Context, in apps.Input) {
	if res, ok := a.task.Poll(); ok {
		if res.OK() {
			a.events = res.Value
			a.selected = rutils.Clamp(a.selected, 0, max(len(a.events)-1, 0))
			a.redraw()
			a.view.SetStatus(lo.Ternary(len(a.events) == 0, statusEmpty, ""))
		} else {
			a.view.SetStatus(res.Status)
		}
	}

	if key, ok := in.Key(); ok && (key == 'r' || key == 'R') {
		apps.Refresh(a.task, a.view, statusUpdating, a.logger)
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
		apps.Refresh(a.task, a.view, statusUpdating, a.logger)
	}
}

func (a *App) move(by int) {
	if len(a.events) == 0 {
		return
	}
	a.selected = rutils.Clamp(a.selected+by, 0, len(a.events)-1)
	a.redraw()
}

func (a *App) redraw() {
	a.view.SetEvents(lo.Map(a.events, func(e Event, _ int) string { return e.Line() }), a.selected)
}

// Close cancels a running fetch.
func (a *App) Close(ctx context.Context) error {
	a.task.Close()
	return nil
}
