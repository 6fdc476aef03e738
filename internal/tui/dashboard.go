package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/punchclock/internal/store"
	"github.com/sadopc/punchclock/internal/tracking"
)

type dashboardModel struct {
	svc    *tracking.Service
	caller *tracking.Caller
	timer  timerModel
	width  int
	height int

	week    tracking.Window
	entries []store.TimeEntry
	err     error
}

func newDashboardModel(svc *tracking.Service, caller *tracking.Caller) dashboardModel {
	return dashboardModel{
		svc:    svc,
		caller: caller,
		timer:  newTimerModel(svc, caller),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool { return d.timer.running() }
func (d dashboardModel) elapsed() time.Duration {
	return d.timer.currentElapsed()
}

type dashboardDataMsg struct {
	running *store.TimeEntry
	week    tracking.Window
	entries []store.TimeEntry
	err     error
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		running, err := d.svc.Current(ctx, d.caller)
		if err != nil {
			return dashboardDataMsg{err: err}
		}
		w := d.svc.Window(nil, nil)
		entries, err := d.svc.MyEntries(ctx, d.caller, w)
		return dashboardDataMsg{running: running, week: w, entries: entries, err: err}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.err = msg.err
		if msg.err == nil {
			d.timer.sync(msg.running)
			d.week = msg.week
			d.entries = msg.entries
		}
		return d, nil

	case tickMsg:
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			if d.timer.running() {
				return d, nil
			}
			return d.startTimer()
		case key.Matches(msg, keys.Stop):
			if !d.timer.running() {
				return d, nil
			}
			return d.stopTimer()
		case key.Matches(msg, keys.Refresh):
			return d, d.loadData()
		}
	}
	return d, nil
}

func (d dashboardModel) startTimer() (dashboardModel, tea.Cmd) {
	entry, err := d.timer.start(context.Background())
	if err != nil {
		return d, errStatus("Error", err)
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStartedMsg{entry: entry} },
	)
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	entry, err := d.timer.stop(context.Background())
	if err != nil {
		return d, tea.Batch(d.loadData(), errStatus("Error", err))
	}
	return d, tea.Batch(
		d.loadData(),
		func() tea.Msg { return timerStoppedMsg{entry: entry} },
	)
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4
	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderTimerPanel(contentWidth),
		d.renderWeekPanel(contentWidth),
	)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.timer.running() {
		timeDisplay := timerRunningStyle.Width(w - 6).Render(formatDuration(d.timer.currentElapsed()))
		indicator := successStyle.Render("●  RUNNING")
		since := mutedStyle.Render("since " + d.timer.since().In(d.svc.Location()).Format("Mon 02 Jan 15:04"))
		content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, since)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start tracking")
	if d.err != nil {
		hint = errorStyle.Render(d.err.Error())
	}
	content := lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) weekTotal() int64 {
	var total int64
	for _, e := range d.entries {
		total += e.Duration
	}
	return total
}

func (d dashboardModel) renderWeekPanel(w int) string {
	loc := d.svc.Location()
	title := titleStyle.Render("This week")
	total := highlightStyle.Render(formatSeconds(d.weekTotal()))
	header := fmt.Sprintf("%s  %s", title, total)
	if !d.week.From.IsZero() {
		header += mutedStyle.Render(fmt.Sprintf("  %s – %s",
			d.week.From.In(loc).Format("Jan 02"), d.week.To.In(loc).Format("Jan 02")))
	}

	if len(d.entries) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No entries this week"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	// newest first, at most what fits
	limit := max(3, d.height-12)
	for i := len(d.entries) - 1; i >= 0 && len(rows) <= limit; i-- {
		e := d.entries[i]
		status := "✓"
		dur := formatSeconds(e.Duration)
		if e.IsRunning() {
			status = successStyle.Render("●")
			dur = "running"
		}
		rows = append(rows, fmt.Sprintf("  %s %-22s %s", status, clockRange(e, loc), dur))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
