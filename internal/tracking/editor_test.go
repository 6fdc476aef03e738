package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

func TestEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := f.addEntry(t, f.worker, base, 600)

	start := base.Add(-30 * time.Minute)
	end := base.Add(2 * time.Hour)
	got, err := NewEditor(f.st).Edit(ctx, e.ID, start, end, f.manager)
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != 9000 || !got.StartedAt.Equal(start) {
		t.Fatalf("edited = %+v", got)
	}

	stored, _ := f.st.GetEntry(ctx, e.ID)
	if stored.Duration != 9000 || !stored.StartedAt.Equal(start) {
		t.Fatalf("stored = %+v", stored)
	}
	if stored.Version != e.Version+1 {
		t.Fatalf("version = %d, want %d", stored.Version, e.Version+1)
	}
}

func TestEditClosesRunningEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := f.addRunning(t, f.worker, base)

	got, err := NewEditor(f.st).Edit(ctx, e.ID, base, base.Add(time.Hour), f.manager)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != store.StatusStopped || got.Duration != 3600 {
		t.Fatalf("edited = %+v", got)
	}
	running, _ := f.st.FindRunning(ctx, f.worker.ID)
	if running != nil {
		t.Fatal("worker should no longer be running")
	}
}

func TestEditEqualBounds(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := f.addEntry(t, f.worker, base, 600)

	got, err := NewEditor(f.st).Edit(context.Background(), e.ID, base, base, f.manager)
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration != 0 {
		t.Fatalf("duration = %d, want 0", got.Duration)
	}
}

func TestEditErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := f.addEntry(t, f.worker, base, 600)

	other, err := f.st.CreateCompany(ctx, "Other", true)
	if err != nil {
		t.Fatal(err)
	}
	outsider, err := f.st.CreateUser(ctx, store.User{CompanyID: other.ID, FirstName: "Otto", CanViewTimeTracking: true})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		id        int64
		start     time.Time
		end       time.Time
		requester store.User
		want      error
	}{
		{"missing entry", 9999, base, base.Add(time.Hour), f.manager, ErrNotFound},
		{"other company", e.ID, base, base.Add(time.Hour), *outsider, ErrForbidden},
		{"end before start", e.ID, base, base.Add(-time.Second), f.manager, ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEditor(f.st).Edit(ctx, tt.id, tt.start, tt.end, tt.requester)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	stored, _ := f.st.GetEntry(ctx, e.ID)
	if stored.Duration != 600 || stored.Version != e.Version {
		t.Fatalf("failed edits must not change the entry: %+v", stored)
	}
}

func TestEditConflictWithStop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	e := f.addRunning(t, f.worker, base)

	rs := &raceStore{Store: f.st}
	rs.beforeSave = func() {
		tm := NewTimer(f.st)
		tm.now = func() time.Time { return base.Add(10 * time.Minute) }
		if _, err := tm.Stop(ctx, e); err != nil {
			t.Errorf("concurrent stop: %v", err)
		}
	}

	_, err := NewEditor(rs).Edit(ctx, e.ID, base, base.Add(time.Hour), f.manager)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	stored, _ := f.st.GetEntry(ctx, e.ID)
	if stored.Duration != 600 {
		t.Fatalf("duration = %d, the stop should have won", stored.Duration)
	}
}
