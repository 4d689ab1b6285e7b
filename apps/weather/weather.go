// Package weather shows the current weather of one city, refreshed on demand and on a schedule.
package weather

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/fetch"
	"go.tdeck.dev/pda/logging"
)

const (
	// DefaultBaseURL is the OpenWeatherMap API root.
	DefaultBaseURL = "https://api.openweathermap.org"
	// DefaultRefresh is how often the report is refreshed in the background.
	DefaultRefresh = 10 * time.Minute

	statusUpdating = "Updating weather..."
)

// Config selects the city and how to reach the API.
type Config struct {
	BaseURL string         `json:"base_url,omitempty"`
	APIKey  string         `json:"api_key"`
	CityID  string         `json:"city_id"`
	Units   string         `json:"units,omitempty"`
	Refresh time.Duration  `json:"refresh,omitempty"`
	Fetch   fetch.Settings `json:"fetch,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.APIKey == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "api_key")
	}
	if conf.CityID == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "city_id")
	}
	switch conf.Units {
	case "", "metric", "imperial", "standard":
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown units %q", conf.Units))
	}
	if conf.Refresh < 0 {
		return utils.NewConfigValidationError(path, errors.New("refresh cannot be negative"))
	}
	return conf.Fetch.Validate(path + ".fetch")
}

func (conf *Config) baseURL() string {
	if conf.BaseURL == "" {
		return DefaultBaseURL
	}
	return conf.BaseURL
}

func (conf *Config) units() string {
	if conf.Units == "" {
		return "metric"
	}
	return conf.Units
}

func (conf *Config) refresh() time.Duration {
	if conf.Refresh == 0 {
		return DefaultRefresh
	}
	return conf.Refresh
}

// NewTask returns the fetch task for conf.
func NewTask(conf Config, online func() bool, logger logging.Logger) *fetch.Task[Report] {
	return fetch.NewTask("weather", fetch.NewHTTPSource(RequestURL(conf), conf.Fetch.Timeout), Decode, conf.Fetch.Options(online), logger)
}

// View draws a report.
type View interface {
	apps.StatusView
	SetReport(report Report, temperature string)
}

// App is the weather screen. Its scheduler keeps refreshing while other apps are shown, so the
// report is current when the user comes back.
type App struct {
	nav       apps.Navigator
	view      View
	task      *fetch.Task[Report]
	units     string
	scheduler gocron.Scheduler
	report    Report
	fetched   bool
	logger    logging.Logger
}

// New returns the weather app and starts its refresh schedule.
func New(nav apps.Navigator, view View, task *fetch.Task[Report], conf Config, logger logging.Logger) (*App, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	a := &App{
		nav:       nav,
		view:      view,
		task:      task,
		units:     conf.units(),
		scheduler: scheduler,
		logger:    logger,
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(conf.refresh()),
		gocron.NewTask(a.backgroundRefresh),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		utils.UncheckedError(scheduler.Shutdown())
		return nil, err
	}
	scheduler.Start()
	return a, nil
}

// ID implements apps.App.
func (a *App) ID() apps.ID {
	return apps.Weather
}

// Report returns the last fetched report, if any.
func (a *App) Report() (Report, bool) {
	return a.report, a.fetched
}

func (a *App) backgroundRefresh() {
	if err := a.task.Start(); err != nil {
		a.logger.Debugw("scheduled weather refresh skipped", "reason", err)
	}
}

// Show redraws the cached report and starts a refresh.
func (a *App) Show(ctx context.Context) error {
	if a.fetched {
		a.view.SetReport(a.report, a.report.Temperature(a.units))
	}
	apps.Refresh(a.task, a.view, statusUpdating, a.logger)
	return nil
}

// Handle collects a finished fetch and reacts to input.
func (a *App) Handle(ctx context.Context, in apps.Input) {
	if res, ok := a.task.Poll(); ok {
		if res.OK() {
			a.report = res.Value
			a.fetched = true
			a.view.SetReport(a.report, a.report.Temperature(a.units))
			a.view.SetStatus("")
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
	case in.Clicked():
		apps.Refresh(a.task, a.view, statusUpdating, a.logger)
	}
}

// Close stops the schedule and cancels a running fetch.
func (a *App) Close(ctx context.Context) error {
	err := a.scheduler.Shutdown()
	a.task.Close()
	return err
}
