package mainmenu

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.tdeck.dev/pda/apps"
	"go.tdeck.dev/pda/apps/appstest"
	"go.tdeck.dev/pda/logging"
)

type fakeView struct {
	appstest.Status
	names    []string
	selected int
}

func (v *fakeView) ShowMenu(names []string, selected int) {
	v.names = names
	v.selected = selected
}

func (v *fakeView) Select(selected int) {
	v.selected = selected
}

type fakeNav struct {
	shown []apps.ID
	err   error
}

func (n *fakeNav) Show(ctx context.Context, id apps.ID) error {
	if n.err != nil {
		return n.err
	}
	n.shown = append(n.shown, id)
	return nil
}

func frame(m *Menu, in *appstest.Input, move appstest.Move) {
	in.Move(move)
	m.Handle(context.Background(), in)
}

func TestMenuShow(t *testing.T) {
	view := &fakeView{}
	m := New(&fakeNav{}, view, logging.NewTestLogger(t))
	test.That(t, m.Show(context.Background()), test.ShouldBeNil)
	test.That(t, view.names, test.ShouldHaveLength, 9)
	test.That(t, view.names[InitialSelection], test.ShouldEqual, "Calendar")
	test.That(t, view.selected, test.ShouldEqual, InitialSelection)
}

func TestMenuNavigationStaysInBounds(t *testing.T) {
	view := &fakeView{}
	in := &appstest.Input{}
	m := New(&fakeNav{}, view, logging.NewTestLogger(t))
	test.That(t, m.Show(context.Background()), test.ShouldBeNil)

	frame(m, in, appstest.Up)
	test.That(t, m.Selected(), test.ShouldEqual, 1)
	frame(m, in, appstest.Up)
	test.That(t, m.Selected(), test.ShouldEqual, 1)
	frame(m, in, appstest.Left)
	test.That(t, m.Selected(), test.ShouldEqual, 0)
	frame(m, in, appstest.Left)
	test.That(t, m.Selected(), test.ShouldEqual, 0)

	frame(m, in, appstest.Down)
	frame(m, in, appstest.Down)
	frame(m, in, appstest.Down)
	test.That(t, m.Selected(), test.ShouldEqual, 6)
	frame(m, in, appstest.Right)
	frame(m, in, appstest.Right)
	frame(m, in, appstest.Right)
	test.That(t, m.Selected(), test.ShouldEqual, 8)
	test.That(t, view.selected, test.ShouldEqual, 8)

	// a frame with nothing pending changes nothing
	m.Handle(context.Background(), in)
	test.That(t, m.Selected(), test.ShouldEqual, 8)
}

func TestMenuLaunch(t *testing.T) {
	view := &fakeView{}
	nav := &fakeNav{}
	in := &appstest.Input{}
	m := New(nav, view, logging.NewTestLogger(t))

	frame(m, in, appstest.Click)
	test.That(t, nav.shown, test.ShouldResemble, []apps.ID{apps.Calendar})

	frame(m, in, appstest.Up)
	frame(m, in, appstest.Click)
	test.That(t, nav.shown, test.ShouldResemble, []apps.ID{apps.Calendar, apps.Notes})
}

func TestMenuUnavailableApp(t *testing.T) {
	view := &fakeView{}
	nav := &fakeNav{err: errors.Wrap(apps.ErrNotRegistered, "Sketch")}
	in := &appstest.Input{}
	m := New(nav, view, logging.NewTestLogger(t))

	frame(m, in, appstest.Up)
	frame(m, in, appstest.Right)
	frame(m, in, appstest.Click)
	test.That(t, view.Last(), test.ShouldEqual, "Sketch is not available")

	nav.err = errors.New("boom")
	frame(m, in, appstest.Click)
	test.That(t, view.Last(), test.ShouldEqual, "Sketch failed to start")
}
