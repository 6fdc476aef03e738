package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seed creates a company with one user and returns both.
func seed(t *testing.T, s *Store) (*Company, *User) {
	t.Helper()
	ctx := context.Background()
	c, err := s.CreateCompany(ctx, "Acme", true)
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	u, err := s.CreateUser(ctx, User{CompanyID: c.ID, FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return c, u
}

func insertEntry(t *testing.T, s *Store, u *User, start time.Time, secs int64, status Status) *TimeEntry {
	t.Helper()
	e := &TimeEntry{UserID: u.ID, CompanyID: u.CompanyID, StartedAt: start, Duration: secs, Status: status}
	if err := s.CreateEntry(context.Background(), e); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	return e
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 applied migration, got %d", n)
	}
	if s.Driver() != DriverSQLite {
		t.Fatalf("driver = %q", s.Driver())
	}
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "punchclock.db")
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateCompany(context.Background(), "Acme", true); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migrations are not re-applied.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.GetCompany(context.Background(), 1); err != nil {
		t.Fatalf("company lost after reopen: %v", err)
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "postgres", "x", nil); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if _, err := Open(context.Background(), DriverMySQL, "", nil); err == nil {
		t.Fatal("expected error for empty mysql dsn")
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "punchclock.db" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(context.Background()); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	src := "-- comment\nCREATE TABLE a (x INT);\n\n-- another\nCREATE INDEX i ON a(x);\n"
	got := splitStatements(src)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (x INT)" {
		t.Fatalf("stmt[0] = %q", got[0])
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("0003_add_index.sql"); err != nil || v != 3 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("init.sql"); err == nil {
		t.Fatal("expected error for missing prefix")
	}
}

// ============================================================
// Companies and users
// ============================================================

func TestCompany(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCompany(ctx, "Acme", true)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "Acme" || !c.TimeTrackingEnabled {
		t.Fatalf("company = %+v", c)
	}

	if err := s.SetTimeTracking(ctx, c.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetCompany(ctx, c.ID)
	if got.TimeTrackingEnabled {
		t.Fatal("time tracking should be disabled")
	}

	if _, err := s.GetCompany(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.SetTimeTracking(ctx, 999, true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, ada := seed(t, s)

	grace, err := s.CreateUser(ctx, User{CompanyID: c.ID, FirstName: "Grace", LastName: "Hopper", JobTitle: "Admiral", ImageURL: "https://example.com/g.png", CanViewTimeTracking: true})
	if err != nil {
		t.Fatal(err)
	}
	if !grace.CanViewTimeTracking || grace.JobTitle != "Admiral" || grace.FullName() != "Grace Hopper" {
		t.Fatalf("user = %+v", grace)
	}

	users, err := s.ListCompanyUsers(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].ID != ada.ID || users[1].ID != grace.ID {
		t.Fatalf("users = %+v", users)
	}

	if err := s.SetTimeTrackingAccess(ctx, ada.ID, true); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetUser(ctx, ada.ID)
	if !got.CanViewTimeTracking {
		t.Fatal("access should be granted")
	}
	if _, err := s.GetUser(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserUnknownCompany(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateUser(context.Background(), User{CompanyID: 42, FirstName: "Nobody"}); err == nil {
		t.Fatal("expected foreign key error")
	}
}

// ============================================================
// Time entries
// ============================================================

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	_, u := seed(t, s)
	start := time.Date(2026, 3, 2, 9, 0, 0, 123456789, time.UTC)

	e := insertEntry(t, s, u, start, 0, StatusRunning)
	if e.ID == 0 || e.Version != 1 {
		t.Fatalf("entry = %+v", e)
	}

	got, err := s.GetEntry(context.Background(), e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.StartedAt.Equal(start.Truncate(time.Millisecond)) {
		t.Fatalf("StartedAt = %v", got.StartedAt)
	}
	if !got.StartedAt.Equal(e.StartedAt) {
		t.Fatal("returned entry should match stored precision")
	}
	if !got.IsRunning() || got.EndedAt() != nil {
		t.Fatalf("entry = %+v", got)
	}
	if _, err := s.GetEntry(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSecondRunningEntryRejected(t *testing.T) {
	s := newTestStore(t)
	_, u := seed(t, s)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	insertEntry(t, s, u, start, 0, StatusRunning)
	e := &TimeEntry{UserID: u.ID, CompanyID: u.CompanyID, StartedAt: start.Add(time.Minute), Status: StatusRunning}
	err := s.CreateEntry(context.Background(), e)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Stopped entries are not limited.
	insertEntry(t, s, u, start.Add(-time.Hour), 60, StatusStopped)
	insertEntry(t, s, u, start.Add(-2*time.Hour), 60, StatusStopped)
}

func TestFindRunning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, u := seed(t, s)

	got, err := s.FindRunning(ctx, u.ID)
	if err != nil || got != nil {
		t.Fatalf("FindRunning on idle user = %v, %v", got, err)
	}

	e := insertEntry(t, s, u, time.Now(), 0, StatusRunning)
	got, err = s.FindRunning(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != e.ID {
		t.Fatalf("FindRunning = %+v", got)
	}
}

func TestSaveEntry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, u := seed(t, s)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	e := insertEntry(t, s, u, start, 0, StatusRunning)
	e.Status = StatusStopped
	e.Duration = 3600
	if err := s.SaveEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	if e.Version != 2 {
		t.Fatalf("version = %d, want 2", e.Version)
	}

	got, _ := s.GetEntry(ctx, e.ID)
	if got.Version != 2 || got.Duration != 3600 || got.Status != StatusStopped {
		t.Fatalf("stored = %+v", got)
	}
	end := got.EndedAt()
	if end == nil || !end.Equal(start.Add(time.Hour)) {
		t.Fatalf("EndedAt = %v", end)
	}
}

func TestSaveEntryStale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, u := seed(t, s)

	e := insertEntry(t, s, u, time.Now(), 0, StatusRunning)
	first := *e
	second := *e

	first.Status = StatusStopped
	first.Duration = 10
	if err := s.SaveEntry(ctx, &first); err != nil {
		t.Fatal(err)
	}

	second.Status = StatusStopped
	second.Duration = 99
	if err := s.SaveEntry(ctx, &second); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	got, _ := s.GetEntry(ctx, e.ID)
	if got.Duration != 10 {
		t.Fatalf("duration = %d, first writer should win", got.Duration)
	}
}

func TestSaveEntryMissing(t *testing.T) {
	s := newTestStore(t)
	e := &TimeEntry{ID: 999, Version: 1, StartedAt: time.Now(), Status: StatusStopped}
	if err := s.SaveEntry(context.Background(), e); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUserEntriesWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, u := seed(t, s)
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 8, 23, 59, 59, 999e6, time.UTC)

	insertEntry(t, s, u, from.Add(-time.Millisecond), 60, StatusStopped)
	last := insertEntry(t, s, u, to, 60, StatusStopped)
	first := insertEntry(t, s, u, from, 60, StatusStopped)
	insertEntry(t, s, u, to.Add(time.Millisecond), 60, StatusStopped)

	got, err := s.ListUserEntries(ctx, u.ID, from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries in window, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != last.ID {
		t.Fatalf("entries should be ordered by start: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestListUserEntriesOtherZone(t *testing.T) {
	s := newTestStore(t)
	_, u := seed(t, s)
	east := time.FixedZone("UTC+3", 3*3600)

	// 01:00 in UTC+3 is the previous day in UTC.
	start := time.Date(2026, 3, 2, 1, 0, 0, 0, east)
	insertEntry(t, s, u, start, 60, StatusStopped)

	from := time.Date(2026, 3, 2, 0, 0, 0, 0, east)
	got, err := s.ListUserEntries(context.Background(), u.ID, from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected entry inside the UTC+3 day, got %d", len(got))
	}
}

func TestListCompanyEntries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c, ada := seed(t, s)
	grace, _ := s.CreateUser(ctx, User{CompanyID: c.ID, FirstName: "Grace"})
	other, _ := s.CreateCompany(ctx, "Other", true)
	otto, _ := s.CreateUser(ctx, User{CompanyID: other.ID, FirstName: "Otto"})

	base := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	insertEntry(t, s, ada, base, 60, StatusStopped)
	insertEntry(t, s, grace, base, 60, StatusStopped)
	insertEntry(t, s, otto, base, 60, StatusStopped)
	insertEntry(t, s, ada, base.Add(-30*24*time.Hour), 0, StatusRunning)

	got, err := s.ListCompanyEntries(ctx, c.ID, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 company entries, got %d", len(got))
	}

	running, err := s.ListCompanyRunning(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(running) != 1 || running[0].UserID != ada.ID {
		t.Fatalf("running = %+v", running)
	}
}
