package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"go.uber.org/atomic"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/apps/appstest"
	"go.tdeck.dev/pda/logging"
)

const sampleBody = `{"name":"São Paulo","main":{"temp":21.46},"weather":[{"description":"nuvens dispersas","icon":"03d"}]}`

type fakeView struct {
	appstest.Status
	mu          sync.Mutex
	report      Report
	temperature string
}

func (v *fakeView) SetReport(report Report, temperature string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.report = report
	v.temperature = temperature
}

type nopNav struct{}

func (nopNav) Show(ctx context.Context, id apps.ID) error { return nil }

func TestConditionFromIcon(t *testing.T) {
	for icon, want := range map[string]Condition{
		"01d": Clear,
		"04n": Clouds,
		"09d": Rain,
		"10n": Rain,
		"11d": Thunder,
		"13d": Snow,
		"50n": Mist,
		"99d": Unknown,
		"":    Unknown,
	} {
		test.That(t, ConditionFromIcon(icon), test.ShouldEqual, want)
	}
}

func TestDecode(t *testing.T) {
	report, err := Decode([]byte(sampleBody))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.City, test.ShouldEqual, "Sao Paulo")
	test.That(t, report.Temp, test.ShouldAlmostEqual, 21.46)
	test.That(t, report.Description, test.ShouldEqual, "nuvens dispersas")
	test.That(t, report.Condition, test.ShouldEqual, Clouds)
	test.That(t, report.Temperature("metric"), test.ShouldEqual, "21.5°C")
	test.That(t, report.Temperature("imperial"), test.ShouldEqual, "21.5°F")

	report, err = Decode([]byte(`{"name":"X","main":{"temp":1}}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.Condition, test.ShouldEqual, Unknown)
}

func TestRequestURL(t *testing.T) {
	raw := RequestURL(Config{BaseURL: "http://localhost:1234/", APIKey: "k", CityID: "3448439"})
	u, err := url.Parse(raw)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, u.Path, test.ShouldEqual, "/data/2.5/weather")
	test.That(t, u.Query().Get("id"), test.ShouldEqual, "3448439")
	test.That(t, u.Query().Get("appid"), test.ShouldEqual, "k")
	test.That(t, u.Query().Get("units"), test.ShouldEqual, "metric")
}

func TestConfigValidate(t *testing.T) {
	conf := Config{CityID: "1"}
	test.That(t, conf.Validate("apps.weather"), test.ShouldNotBeNil)
	conf = Config{APIKey: "k", CityID: "1", Units: "kelvin"}
	test.That(t, conf.Validate("apps.weather"), test.ShouldNotBeNil)
	conf.Units = "imperial"
	test.That(t, conf.Validate("apps.weather"), test.ShouldBeNil)
}

func newServer(hits *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
		if r.URL.Query().Get("appid") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
}

func TestWeatherApp(t *testing.T) {
	logger := logging.NewTestLogger(t)
	hits := atomic.NewInt64(0)
	srv := newServer(hits)
	defer srv.Close()

	conf := Config{BaseURL: srv.URL, APIKey: "secret", CityID: "1", Refresh: time.Hour}
	view := &fakeView{}
	in := &appstest.Input{}
	app, err := New(nopNav{}, view, NewTask(conf, nil, logger), conf, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, app.Close(context.Background()), test.ShouldBeNil)
	}()

	_, ok := app.Report()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, app.Show(context.Background()), test.ShouldBeNil)
	test.That(t, view.Last(), test.ShouldEqual, "Updating weather...")
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		app.Handle(context.Background(), in)
		_, ok := app.Report()
		test.That(tb, ok, test.ShouldBeTrue)
	})
	view.mu.Lock()
	test.That(t, view.report.City, test.ShouldEqual, "Sao Paulo")
	test.That(t, view.temperature, test.ShouldEqual, "21.5°C")
	view.mu.Unlock()
	test.That(t, view.Last(), test.ShouldEqual, "")
}

func TestWeatherBadKey(t *testing.T) {
	logger := logging.NewTestLogger(t)
	hits := atomic.NewInt64(0)
	srv := newServer(hits)
	defer srv.Close()

	conf := Config{BaseURL: srv.URL, APIKey: "wrong", CityID: "1", Refresh: time.Hour}
	view := &fakeView{}
	app, err := New(nopNav{}, view, NewTask(conf, nil, logger), conf, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, app.Close(context.Background()), test.ShouldBeNil)
	}()

	test.That(t, app.Show(context.Background()), test.ShouldBeNil)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		app.Handle(context.Background(), &appstest.Input{})
		test.That(tb, view.Last(), test.ShouldEqual, "HTTP error: 401")
	})
}

func TestWeatherScheduledRefresh(t *testing.T) {
	logger := logging.NewTestLogger(t)
	hits := atomic.NewInt64(0)
	srv := newServer(hits)
	defer srv.Close()

	conf := Config{BaseURL: srv.URL, APIKey: "secret", CityID: "1", Refresh: 20 * time.Millisecond}
	app, err := New(nopNav{}, &fakeView{}, NewTask(conf, nil, logger), conf, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, app.Close(context.Background()), test.ShouldBeNil)
	}()

	// never shown, still refreshed
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, hits.Load(), test.ShouldBeGreaterThanOrEqualTo, 2)
	})
	test.That(t, app.task.Ready(), test.ShouldBeTrue)
}
