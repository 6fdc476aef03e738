package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

type fixture struct {
	st      *store.Store
	company *store.Company
	manager store.User // may view time tracking
	worker  store.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	c, err := st.CreateCompany(ctx, "Acme", true)
	if err != nil {
		t.Fatal(err)
	}
	mgr, err := st.CreateUser(ctx, store.User{CompanyID: c.ID, FirstName: "Mia", LastName: "Manager", JobTitle: "Lead", CanViewTimeTracking: true})
	if err != nil {
		t.Fatal(err)
	}
	wrk, err := st.CreateUser(ctx, store.User{CompanyID: c.ID, FirstName: "Walt", LastName: "Worker", JobTitle: "Engineer"})
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{st: st, company: c, manager: *mgr, worker: *wrk}
}

// addEntry stores a stopped entry of secs seconds starting at start.
func (f *fixture) addEntry(t *testing.T, u store.User, start time.Time, secs int64) *store.TimeEntry {
	t.Helper()
	e := &store.TimeEntry{UserID: u.ID, CompanyID: u.CompanyID, StartedAt: start, Duration: secs, Status: store.StatusStopped}
	if err := f.st.CreateEntry(context.Background(), e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	return e
}

func (f *fixture) addRunning(t *testing.T, u store.User, start time.Time) *store.TimeEntry {
	t.Helper()
	e := &store.TimeEntry{UserID: u.ID, CompanyID: u.CompanyID, StartedAt: start, Status: store.StatusRunning}
	if err := f.st.CreateEntry(context.Background(), e); err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	return e
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// raceStore lets a test slip a concurrent write in just before the
// wrapped call reaches storage. Each hook fires once.
type raceStore struct {
	*store.Store
	beforeFind  func()
	beforeSave  func()
	afterCreate func()
}

// FindRunning runs the hook and then reports the timer as idle, as a read
// that happened before the concurrent write would.
func (r *raceStore) FindRunning(ctx context.Context, userID int64) (*store.TimeEntry, error) {
	if f := r.beforeFind; f != nil {
		r.beforeFind = nil
		f()
		return nil, nil
	}
	return r.Store.FindRunning(ctx, userID)
}

// CreateEntry runs the hook once the insert has been attempted.
func (r *raceStore) CreateEntry(ctx context.Context, e *store.TimeEntry) error {
	err := r.Store.CreateEntry(ctx, e)
	if f := r.afterCreate; f != nil {
		r.afterCreate = nil
		f()
	}
	return err
}

func (r *raceStore) SaveEntry(ctx context.Context, e *store.TimeEntry) error {
	if f := r.beforeSave; f != nil {
		r.beforeSave = nil
		f()
	}
	return r.Store.SaveEntry(ctx, e)
}

func ptr[T any](v T) *T { return &v }
