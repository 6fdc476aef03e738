package tui

import (
	"context"
	"errors"
	"time"

	"github.com/sadopc/punchclock/internal/store"
	"github.com/sadopc/punchclock/internal/tracking"
)

// timerModel mirrors the caller's running entry. Storage is the source of
// truth: a timer started from the API shows up here on the next sync.
type timerModel struct {
	svc    *tracking.Service
	caller *tracking.Caller
	now    func() time.Time

	entry *store.TimeEntry // nil while idle
}

func newTimerModel(svc *tracking.Service, caller *tracking.Caller) timerModel {
	return timerModel{svc: svc, caller: caller, now: time.Now}
}

// sync adopts whatever entry storage reports as running.
func (t *timerModel) sync(e *store.TimeEntry) {
	if e != nil && !e.IsRunning() {
		e = nil
	}
	t.entry = e
}

func (t *timerModel) start(ctx context.Context) (*store.TimeEntry, error) {
	e, err := t.svc.StartTimer(ctx, t.caller)
	if err != nil {
		return nil, err
	}
	t.entry = e
	return e, nil
}

// stop closes the running entry. A timer that was already stopped elsewhere
// is reported as an error and the local state is cleared.
func (t *timerModel) stop(ctx context.Context) (*store.TimeEntry, error) {
	e, err := t.svc.StopTimer(ctx, t.caller)
	if err != nil {
		if errors.Is(err, tracking.ErrNotFound) {
			t.entry = nil
		}
		return nil, err
	}
	t.entry = nil
	return e, nil
}

func (t timerModel) running() bool {
	return t.entry != nil
}

func (t timerModel) since() time.Time {
	if t.entry == nil {
		return time.Time{}
	}
	return t.entry.StartedAt
}

func (t timerModel) currentElapsed() time.Duration {
	if t.entry == nil {
		return 0
	}
	d := t.now().Sub(t.entry.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}
