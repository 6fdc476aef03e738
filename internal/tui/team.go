package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/punchclock/internal/tracking"
)

var barColors = []lipgloss.Color{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#9B59B6", "#3498DB"}

type teamModel struct {
	svc    *tracking.Service
	caller *tracking.Caller
	now    func() time.Time
	width  int
	height int

	offset    int // weeks back from the current one
	week      tracking.Window
	summaries []tracking.Summary
	denied    bool
	err       error

	chart barchart.Model
}

func newTeamModel(svc *tracking.Service, caller *tracking.Caller) teamModel {
	return teamModel{
		svc:    svc,
		caller: caller,
		now:    time.Now,
		chart:  barchart.New(60, 12),
	}
}

func (t *teamModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type teamDataMsg struct {
	week      tracking.Window
	summaries []tracking.Summary
	err       error
}

func (t teamModel) window() tracking.Window {
	return tracking.Week(t.now().AddDate(0, 0, -7*t.offset), t.svc.Location())
}

func (t teamModel) refresh() tea.Cmd {
	w := t.window()
	return func() tea.Msg {
		rows, err := t.svc.Summary(context.Background(), t.caller, w)
		return teamDataMsg{week: w, summaries: rows, err: err}
	}
}

func (t teamModel) update(msg tea.Msg) (teamModel, tea.Cmd) {
	switch msg := msg.(type) {
	case teamDataMsg:
		t.week = msg.week
		t.denied = errors.Is(msg.err, tracking.ErrForbidden)
		t.err = msg.err
		t.summaries = msg.summaries
		t.buildChart()
		return t, nil

	case timerStartedMsg, timerStoppedMsg, entryEditedMsg:
		return t, t.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			t.offset++
			return t, t.refresh()
		case key.Matches(msg, keys.Right):
			if t.offset > 0 {
				t.offset--
			}
			return t, t.refresh()
		case key.Matches(msg, keys.Refresh):
			return t, t.refresh()
		}
	}
	return t, nil
}

func (t *teamModel) buildChart() {
	chartWidth := max(20, t.width-8)
	chartHeight := 12
	if t.height > 30 {
		chartHeight = 16
	}
	t.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, s := range t.summaries {
		style := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)])
		bars = append(bars, barchart.BarData{
			Label: s.FirstName,
			Values: []barchart.BarValue{{
				Name:  s.FirstName,
				Value: float64(s.TotalDurationSeconds) / 3600,
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	t.chart.PushAll(bars)
	t.chart.Draw()
}

func (t teamModel) teamTotal() int64 {
	var total int64
	for _, s := range t.summaries {
		total += s.TotalDurationSeconds
	}
	return total
}

func (t teamModel) view() string {
	w := t.width - 4
	loc := t.svc.Location()

	shown := t.week
	if shown.From.IsZero() {
		shown = t.window()
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Team"), "  ",
		mutedStyle.Render(fmt.Sprintf("%s – %s", shown.From.In(loc).Format("Jan 02"), shown.To.In(loc).Format("Jan 02, 2006"))),
	)
	nav := mutedStyle.Render("  ←/→: navigate  r: refresh")

	switch {
	case t.denied:
		body := warningStyle.Render("You don't have access to the team overview.")
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body))
	case t.err != nil:
		body := errorStyle.Render(t.err.Error())
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav))
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", t.chart.View(), "", t.renderTable(w), "", nav,
		),
	)
}

func (t teamModel) renderTable(w int) string {
	if len(t.summaries) == 0 {
		return mutedStyle.Render("  No team members")
	}
	loc := t.svc.Location()

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-22s %-3s %-22s %8s", "Name", "", "Last entry", "Total")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 58)))))

	for _, s := range t.summaries {
		marker := " "
		if s.Running {
			marker = successStyle.Render("●")
		}
		last := "—"
		if s.LastEntryStart != nil && s.LastEntryEnd != nil {
			last = fmt.Sprintf("%s-%s",
				s.LastEntryStart.In(loc).Format("Mon 02 15:04"), s.LastEntryEnd.In(loc).Format("15:04"))
		}
		name := strings.TrimSpace(s.FirstName + " " + s.LastName)
		rows = append(rows, fmt.Sprintf("  %-22s %-3s %-22s %8s", name, marker, last, formatSeconds(s.TotalDurationSeconds)))
	}

	rows = append(rows, "", highlightStyle.Render(fmt.Sprintf("  Team total %s (%s)", formatSeconds(t.teamTotal()), formatHours(t.teamTotal()))))
	return strings.Join(rows, "\n")
}
