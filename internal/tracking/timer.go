package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

// Timer is the per-user start/stop state machine. A user is either idle
// (no RUNNING entry) or running exactly one entry; the storage layer's
// uniqueness constraint arbitrates concurrent starts.
type Timer struct {
	entries EntryStore
	now     func() time.Time
}

func NewTimer(entries EntryStore) *Timer {
	return &Timer{entries: entries, now: time.Now}
}

// Start returns the user's running entry, creating one if the timer is idle.
// Starting a running timer is a no-op.
func (t *Timer) Start(ctx context.Context, user store.User) (*store.TimeEntry, error) {
	running, err := t.entries.FindRunning(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("start timer: %w", err)
	}
	if running != nil {
		return running, nil
	}

	e := &store.TimeEntry{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		StartedAt: t.now(),
		Status:    store.StatusRunning,
	}
	if err := t.entries.CreateEntry(ctx, e); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("start timer: %w", err)
		}
		// A concurrent start won; hand back its entry. If the winner was
		// already stopped again there is nothing to return.
		running, ferr := t.entries.FindRunning(ctx, user.ID)
		if ferr != nil {
			return nil, fmt.Errorf("start timer: %w", ferr)
		}
		if running == nil {
			return nil, fmt.Errorf("start timer: %w", ErrConflict)
		}
		return running, nil
	}
	return e, nil
}

// Stop closes a RUNNING entry, adding the whole seconds elapsed since its
// start. Entries that are not running come back unchanged.
func (t *Timer) Stop(ctx context.Context, e *store.TimeEntry) (*store.TimeEntry, error) {
	if !e.IsRunning() {
		return e, nil
	}
	stopped := *e
	stopped.Status = store.StatusStopped
	stopped.Duration += elapsedSeconds(e.StartedAt, t.now())
	if err := t.entries.SaveEntry(ctx, &stopped); err != nil {
		return nil, conflict(err, fmt.Sprintf("stop timer %d", e.ID))
	}
	return &stopped, nil
}

// FindRunning returns the user's running entry or nil.
func (t *Timer) FindRunning(ctx context.Context, userID int64) (*store.TimeEntry, error) {
	return t.entries.FindRunning(ctx, userID)
}

// elapsedSeconds truncates to whole seconds and never goes negative, so a
// clock that moved backwards records zero.
func elapsedSeconds(from, to time.Time) int64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
