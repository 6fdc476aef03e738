package tracking

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sadopc/punchclock/internal/export"
	"github.com/sadopc/punchclock/internal/store"
)

// Caller is the authenticated user on whose behalf an operation runs.
type Caller struct {
	User    store.User
	Company store.Company
}

// Service is the entry point used by the HTTP server and the TUI. It adds
// the entitlement and permission checks in front of the engine.
type Service struct {
	Timer      *Timer
	Editor     *Editor
	Aggregator *Aggregator

	entries EntryStore
	dir     Directory
	loc     *time.Location
	now     func() time.Time
	log     *slog.Logger
}

func NewService(entries EntryStore, dir Directory, loc *time.Location, log *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Timer:      NewTimer(entries),
		Editor:     NewEditor(entries),
		Aggregator: NewAggregator(entries, dir),
		entries:    entries,
		dir:        dir,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// Location is the reporting timezone.
func (s *Service) Location() *time.Location { return s.loc }

// Identify resolves a user id into a Caller.
func (s *Service) Identify(ctx context.Context, userID int64) (*Caller, error) {
	u, err := s.dir.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	c, err := s.dir.GetCompany(ctx, u.CompanyID)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return &Caller{User: *u, Company: *c}, nil
}

// Window resolves optional bounds, defaulting to the current week.
func (s *Service) Window(from, to *time.Time) Window {
	return ResolveWindow(from, to, s.now(), s.loc)
}

func (s *Service) StartTimer(ctx context.Context, c *Caller) (*store.TimeEntry, error) {
	if err := ensureFeature(c); err != nil {
		return nil, err
	}
	e, err := s.Timer.Start(ctx, c.User)
	if err != nil {
		return nil, err
	}
	s.log.Debug("timer started", slog.Int64("user", c.User.ID), slog.Int64("entry", e.ID))
	return e, nil
}

// StopTimer stops the caller's running entry; ErrNotFound when there is none.
func (s *Service) StopTimer(ctx context.Context, c *Caller) (*store.TimeEntry, error) {
	if err := ensureFeature(c); err != nil {
		return nil, err
	}
	running, err := s.Timer.FindRunning(ctx, c.User.ID)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, fmt.Errorf("no timer to stop: %w", ErrNotFound)
	}
	e, err := s.Timer.Stop(ctx, running)
	if err != nil {
		return nil, err
	}
	s.log.Debug("timer stopped", slog.Int64("user", c.User.ID), slog.Int64("entry", e.ID), slog.Int64("duration", e.Duration))
	return e, nil
}

// Current returns the caller's running entry, or nil.
func (s *Service) Current(ctx context.Context, c *Caller) (*store.TimeEntry, error) {
	if err := ensureFeature(c); err != nil {
		return nil, err
	}
	return s.Timer.FindRunning(ctx, c.User.ID)
}

func (s *Service) MyEntries(ctx context.Context, c *Caller, w Window) ([]store.TimeEntry, error) {
	if err := ensureFeature(c); err != nil {
		return nil, err
	}
	return s.entries.ListUserEntries(ctx, c.User.ID, w.From, w.To)
}

func (s *Service) UserEntries(ctx context.Context, c *Caller, userID int64, w Window) ([]store.TimeEntry, error) {
	if err := ensureAccess(c); err != nil {
		return nil, err
	}
	target, err := s.userInCompany(ctx, c, userID)
	if err != nil {
		return nil, err
	}
	return s.entries.ListUserEntries(ctx, target.ID, w.From, w.To)
}

func (s *Service) Summary(ctx context.Context, c *Caller, w Window) ([]Summary, error) {
	if err := ensureAccess(c); err != nil {
		return nil, err
	}
	return s.Aggregator.Summarize(ctx, c.Company.ID, w)
}

func (s *Service) EditEntry(ctx context.Context, c *Caller, id int64, start, end time.Time) (*store.TimeEntry, error) {
	if err := ensureAccess(c); err != nil {
		return nil, err
	}
	e, err := s.Editor.Edit(ctx, id, start, end, c.User)
	if err != nil {
		return nil, err
	}
	s.log.Info("time entry edited", slog.Int64("entry", id), slog.Int64("by", c.User.ID), slog.Int64("duration", e.Duration))
	return e, nil
}

// Export renders userID's entries in w. Rendering failures are logged and
// reported as ErrInternalExport.
func (s *Service) Export(ctx context.Context, c *Caller, userID int64, w Window, f export.Format) (*export.File, error) {
	if err := ensureAccess(c); err != nil {
		return nil, err
	}
	target, err := s.userInCompany(ctx, c, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListUserEntries(ctx, target.ID, w.From, w.To)
	if err != nil {
		return nil, err
	}
	return s.render(export.Report{
		User:        *target,
		Company:     c.Company,
		From:        w.From,
		To:          w.To,
		Entries:     entries,
		GeneratedAt: s.now(),
		Location:    s.loc,
	}, f)
}

// ExportMine renders the caller's own entries; only the feature gate applies.
func (s *Service) ExportMine(ctx context.Context, c *Caller, w Window, f export.Format) (*export.File, error) {
	entries, err := s.MyEntries(ctx, c, w)
	if err != nil {
		return nil, err
	}
	return s.render(export.Report{
		User:        c.User,
		Company:     c.Company,
		From:        w.From,
		To:          w.To,
		Entries:     entries,
		GeneratedAt: s.now(),
		Location:    s.loc,
	}, f)
}

func (s *Service) render(r export.Report, f export.Format) (*export.File, error) {
	file, err := export.Render(r, f)
	if err != nil {
		s.log.Error("export failed", slog.Int64("user", r.User.ID), slog.String("format", string(f)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrInternalExport, err)
	}
	return file, nil
}

// userInCompany loads userID and checks it belongs to the caller's company.
func (s *Service) userInCompany(ctx context.Context, c *Caller, userID int64) (*store.User, error) {
	u, err := s.dir.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if u.CompanyID != c.Company.ID {
		return nil, fmt.Errorf("user %d: %w", userID, ErrForbidden)
	}
	return u, nil
}

func ensureFeature(c *Caller) error {
	if !c.Company.TimeTrackingEnabled {
		return fmt.Errorf("upgrade required for time tracking: %w", ErrForbidden)
	}
	return nil
}

func ensureAccess(c *Caller) error {
	if err := ensureFeature(c); err != nil {
		return err
	}
	if !c.User.CanViewTimeTracking {
		return fmt.Errorf("time tracking view permission missing: %w", ErrForbidden)
	}
	return nil
}
