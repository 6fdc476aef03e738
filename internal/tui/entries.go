package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/punchclock/internal/store"
	"github.com/sadopc/punchclock/internal/tracking"
)

type entriesModel struct {
	svc    *tracking.Service
	caller *tracking.Caller
	now    func() time.Time
	width  int
	height int

	offset  int // weeks back from the current one
	week    tracking.Window
	entries []store.TimeEntry
	cursor  int
	err     error

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formStart *string
	formEnd   *string

	editingID int64
}

func newEntriesModel(svc *tracking.Service, caller *tracking.Caller) entriesModel {
	start, end := "", ""
	return entriesModel{
		svc:       svc,
		caller:    caller,
		now:       time.Now,
		formStart: &start,
		formEnd:   &end,
	}
}

func (m *entriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type entriesDataMsg struct {
	week    tracking.Window
	entries []store.TimeEntry
	err     error
}

func (m entriesModel) window() tracking.Window {
	return tracking.Week(m.now().AddDate(0, 0, -7*m.offset), m.svc.Location())
}

func (m entriesModel) refresh() tea.Cmd {
	w := m.window()
	return func() tea.Msg {
		entries, err := m.svc.MyEntries(context.Background(), m.caller, w)
		return entriesDataMsg{week: w, entries: entries, err: err}
	}
}

func (m entriesModel) update(msg tea.Msg) (entriesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case entriesDataMsg:
		m.err = msg.err
		m.week = msg.week
		m.entries = msg.entries
		if m.cursor >= len(m.entries) {
			m.cursor = max(0, len(m.entries)-1)
		}
		return m, nil

	case entryEditedMsg:
		return m, m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.offset++
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
				m.cursor = 0
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, keys.Edit):
			if len(m.entries) > 0 {
				return m.showEditForm()
			}
		}
	}
	return m, nil
}

func (m entriesModel) validateStamp(s string) error {
	if _, err := time.ParseInLocation(inputLayout, strings.TrimSpace(s), m.svc.Location()); err != nil {
		return fmt.Errorf("use %s", inputLayout)
	}
	return nil
}

func (m entriesModel) showEditForm() (entriesModel, tea.Cmd) {
	e := m.entries[m.cursor]
	loc := m.svc.Location()
	*m.formStart = e.StartedAt.In(loc).Format(inputLayout)
	if e.IsRunning() {
		*m.formEnd = m.now().In(loc).Format(inputLayout)
	} else {
		*m.formEnd = e.StartedAt.Add(time.Duration(e.Duration) * time.Second).In(loc).Format(inputLayout)
	}
	m.editingID = e.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Start").Value(m.formStart).Validate(m.validateStamp),
			huh.NewInput().Title("End").Value(m.formEnd).Validate(m.validateStamp),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m entriesModel) updateForm(msg tea.Msg) (entriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.saveEdit()
	}
	return m, cmd
}

// saveEdit submits the form values for the entry being edited.
func (m entriesModel) saveEdit() tea.Cmd {
	loc := m.svc.Location()
	id := m.editingID
	rawStart, rawEnd := strings.TrimSpace(*m.formStart), strings.TrimSpace(*m.formEnd)
	return func() tea.Msg {
		start, err := time.ParseInLocation(inputLayout, rawStart, loc)
		if err != nil {
			return statusMsg{text: "Invalid start: " + rawStart, isError: true}
		}
		end, err := time.ParseInLocation(inputLayout, rawEnd, loc)
		if err != nil {
			return statusMsg{text: "Invalid end: " + rawEnd, isError: true}
		}
		e, err := m.svc.EditEntry(context.Background(), m.caller, id, start, end)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Edit failed: %v", err), isError: true}
		}
		return entryEditedMsg{entry: e}
	}
}

func (m entriesModel) view() string {
	w := m.width - 4
	if m.formActive && m.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Entry"), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	loc := m.svc.Location()
	shown := m.week
	if shown.From.IsZero() {
		shown = m.window()
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Entries"), "  ",
		mutedStyle.Render(fmt.Sprintf("%s – %s", shown.From.In(loc).Format("Jan 02"), shown.To.In(loc).Format("Jan 02, 2006"))),
	)

	var rows []string
	rows = append(rows, header, "")

	switch {
	case m.err != nil:
		rows = append(rows, errorStyle.Render(m.err.Error()))
	case len(m.entries) == 0:
		rows = append(rows, mutedStyle.Render("No entries for this week"))
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %8s  %s", "When", "Duration", "Status")))
		var total int64
		for i, e := range m.entries {
			cursor := "  "
			style := normalItemStyle
			if i == m.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			total += e.Duration
			rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %8s  %s",
				cursor, clockRange(e, loc), formatSeconds(e.Duration), strings.ToLower(string(e.Status)))))
		}
		rows = append(rows, "", highlightStyle.Render(fmt.Sprintf("  Total %s", formatSeconds(total))))
	}

	rows = append(rows, "", mutedStyle.Render("  enter: edit  ←/→: week  r: refresh"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
