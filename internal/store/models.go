package store

import "time"

// Status is the lifecycle state of a time entry.
type Status string

const (
	StatusRunning Status = "RUNNING"
	StatusStopped Status = "STOPPED"
)

// Audit holds bookkeeping timestamps shared by every persisted record.
type Audit struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Company struct {
	ID                  int64
	Name                string
	TimeTrackingEnabled bool
	Audit
}

type User struct {
	ID                  int64
	CompanyID           int64
	FirstName           string
	LastName            string
	JobTitle            string
	ImageURL            string
	CanViewTimeTracking bool
	Audit
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// TimeEntry is one tracked interval for one user. CompanyID is copied from
// the owning user so company-wide queries need no join.
type TimeEntry struct {
	ID        int64
	UserID    int64
	CompanyID int64
	StartedAt time.Time
	Duration  int64 // seconds, 0 while running
	Status    Status
	Version   int64
	Audit
}

// EndedAt is nil while no duration has been recorded, otherwise
// StartedAt plus Duration seconds.
func (e TimeEntry) EndedAt() *time.Time {
	if e.Duration == 0 {
		return nil
	}
	t := e.StartedAt.Add(time.Duration(e.Duration) * time.Second)
	return &t
}

func (e TimeEntry) IsRunning() bool {
	return e.Status == StatusRunning
}
