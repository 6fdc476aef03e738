package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/punchclock/internal/export"
	"github.com/sadopc/punchclock/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewEntries
	viewTeam
)

var viewNames = []string{"Dashboard", "Entries", "Team"}

// inputLayout is how the edit form reads and shows timestamps.
const inputLayout = "2006-01-02 15:04"

// --- Messages ---

type timerStartedMsg struct {
	entry *store.TimeEntry
}

type timerStoppedMsg struct {
	entry *store.TimeEntry
}

type entryEditedMsg struct {
	entry *store.TimeEntry
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

func errStatus(prefix string, err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

// --- Helpers ---

// formatDuration renders a live clock as HH:MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatSeconds renders a stored duration the way reports do (H:MM).
func formatSeconds(secs int64) string {
	return export.FormatDuration(secs)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// clockRange renders an entry as "Mon 02 15:04-17:30", with "…" while open.
func clockRange(e store.TimeEntry, loc *time.Location) string {
	start := e.StartedAt.In(loc)
	end := "…"
	if !e.IsRunning() {
		end = start.Add(time.Duration(e.Duration) * time.Second).Format("15:04")
	}
	return fmt.Sprintf("%s %s-%s", start.Format("Mon 02"), start.Format("15:04"), end)
}
