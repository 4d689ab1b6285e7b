// Package console renders the apps as text frames on a terminal, for running the handheld
// headless or on a development machine.
package console

import (
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.viam.com/utils"

	"go.tdeck.dev/pda/apps/calendar"
	"go.tdeck.dev/pda/apps/mainmenu"
	"go.tdeck.dev/pda/apps/notes"
	"go.tdeck.dev/pda/apps/weather"
)

const menuColumns = 3

var (
	titleColor    = color.New(color.Bold, color.FgCyan)
	statusColor   = color.New(color.FgYellow)
	selectedColor = color.New(color.FgBlack, color.BgWhite)
)

// Console draws one screen at a time to a writer. Every view method redraws the whole screen.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	width  int
	title  string
	body   string
	status string
}

// New returns a Console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out}
}

// SetWidth caps the length of table rows, usually to the terminal width. Zero removes the cap.
func (c *Console) SetWidth(cols int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = cols
}

func (c *Console) setScreen(title, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title != title {
		c.status = ""
	}
	c.title = title
	c.body = body
	c.renderLocked()
}

func (c *Console) setStatus(title, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.title != title {
		c.title = title
		c.body = ""
	}
	c.status = status
	c.renderLocked()
}

func (c *Console) renderLocked() {
	var sb strings.Builder
	titleColor.Fprintln(&sb, c.title)
	if c.body != "" {
		sb.WriteString(c.body)
		if !strings.HasSuffix(c.body, "\n") {
			sb.WriteString("\n")
		}
	}
	if c.status != "" {
		statusColor.Fprintln(&sb, c.status)
	}
	sb.WriteString("\n")
	_, err := io.WriteString(c.out, sb.String())
	utils.UncheckedError(err)
}

func (c *Console) newTable() table.Writer {
	c.mu.Lock()
	width := c.width
	c.mu.Unlock()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(width)
	return t
}

func (c *Console) listBody(lines []string, selected int) string {
	if len(lines) == 0 {
		return "(empty)"
	}
	t := c.newTable()
	for i, line := range lines {
		marker := " "
		if i == selected {
			marker = ">"
			line = selectedColor.Sprint(line)
		}
		t.AppendRow(table.Row{marker, line})
	}
	return t.Render()
}

// MenuView draws the launcher grid.
type MenuView struct {
	c     *Console
	names []string
}

// Menu returns the launcher view.
func (c *Console) Menu() *MenuView {
	return &MenuView{c: c}
}

// ShowMenu implements mainmenu.View.
func (v *MenuView) ShowMenu(names []string, selected int) {
	v.names = names
	v.Select(selected)
}

// Select implements mainmenu.View.
func (v *MenuView) Select(selected int) {
	t := v.c.newTable()
	t.Style().Options.SeparateRows = true
	var row table.Row
	for i, name := range v.names {
		if i == selected {
			name = selectedColor.Sprintf("[%s]", name)
		}
		row = append(row, name)
		if len(row) == menuColumns {
			t.AppendRow(row)
			row = nil
		}
	}
	if len(row) > 0 {
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 2, Align: text.AlignCenter},
		{Number: 3, Align: text.AlignCenter},
	})
	v.c.setScreen("Menu", t.Render())
}

// SetStatus implements apps.StatusView.
func (v *MenuView) SetStatus(status string) {
	v.c.setStatus("Menu", status)
}

// ListView draws a selectable list under a title.
type ListView struct {
	c     *Console
	title string
}

// List returns a list view titled title.
func (c *Console) List(title string) *ListView {
	return &ListView{c: c, title: title}
}

// SetItems implements notes.View.
func (v *ListView) SetItems(titles []string, selected int) {
	v.c.setScreen(v.title, v.c.listBody(titles, selected))
}

// SetEvents implements calendar.View.
func (v *ListView) SetEvents(lines []string, selected int) {
	v.SetItems(lines, selected)
}

// SetStatus implements apps.StatusView.
func (v *ListView) SetStatus(status string) {
	v.c.setStatus(v.title, status)
}

// WeatherView draws a weather report.
type WeatherView struct {
	c *Console
}

// Weather returns the weather view.
func (c *Console) Weather() *WeatherView {
	return &WeatherView{c: c}
}

// SetReport implements weather.View.
func (v *WeatherView) SetReport(report weather.Report, temperature string) {
	t := v.c.newTable()
	t.AppendRows([]table.Row{
		{"City", report.City},
		{"Temperature", temperature},
		{"Sky", report.Description},
		{"Condition", string(report.Condition)},
	})
	v.c.setScreen("Weather", t.Render())
}

// SetStatus implements apps.StatusView.
func (v *WeatherView) SetStatus(status string) {
	v.c.setStatus("Weather", status)
}

var (
	_ mainmenu.View = (*MenuView)(nil)
	_ notes.View    = (*ListView)(nil)
	_ calendar.View = (*ListView)(nil)
	_ weather.View  = (*WeatherView)(nil)
)
