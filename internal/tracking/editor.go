package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

// Editor applies manual corrections to recorded entries.
type Editor struct {
	entries EntryStore
}

func NewEditor(entries EntryStore) *Editor {
	return &Editor{entries: entries}
}

// Edit rewrites the entry's boundaries and closes it, even if it was running.
// The save is version-checked: if a stop or another edit landed since the
// read, Edit fails with ErrConflict and the stored entry is untouched.
func (ed *Editor) Edit(ctx context.Context, id int64, start, end time.Time, requester store.User) (*store.TimeEntry, error) {
	e, err := ed.entries.GetEntry(ctx, id)
	if err != nil {
		return nil, notFound(err, "time entry")
	}
	if e.CompanyID != requester.CompanyID {
		return nil, fmt.Errorf("time entry %d: %w", id, ErrForbidden)
	}
	if end.Before(start) {
		return nil, ErrInvalidRange
	}

	e.StartedAt = start
	e.Duration = elapsedSeconds(start, end)
	e.Status = store.StatusStopped
	if err := ed.entries.SaveEntry(ctx, e); err != nil {
		return nil, conflict(err, fmt.Sprintf("edit time entry %d", id))
	}
	return e, nil
}
