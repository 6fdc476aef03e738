package tracking

import (
	"context"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

// EntryStore persists time entries. All reads return committed data.
type EntryStore interface {
	CreateEntry(ctx context.Context, e *store.TimeEntry) error
	SaveEntry(ctx context.Context, e *store.TimeEntry) error
	GetEntry(ctx context.Context, id int64) (*store.TimeEntry, error)
	FindRunning(ctx context.Context, userID int64) (*store.TimeEntry, error)
	ListUserEntries(ctx context.Context, userID int64, from, to time.Time) ([]store.TimeEntry, error)
	ListCompanyEntries(ctx context.Context, companyID int64, from, to time.Time) ([]store.TimeEntry, error)
	ListCompanyRunning(ctx context.Context, companyID int64) ([]store.TimeEntry, error)
}

// Directory resolves users and companies. Managing them is somebody else's job.
type Directory interface {
	GetUser(ctx context.Context, id int64) (*store.User, error)
	GetCompany(ctx context.Context, id int64) (*store.Company, error)
	ListCompanyUsers(ctx context.Context, companyID int64) ([]store.User, error)
}
