package tracking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

// Summary is one user's rollup for a reporting window.
type Summary struct {
	UserID               int64
	FirstName            string
	LastName             string
	JobTitle             string
	ImageURL             string
	Running              bool
	RunningSince         *time.Time
	LastEntryStart       *time.Time
	LastEntryEnd         *time.Time
	TotalDurationSeconds int64
}

// Aggregator builds company-wide summaries.
type Aggregator struct {
	entries EntryStore
	dir     Directory
}

func NewAggregator(entries EntryStore, dir Directory) *Aggregator {
	return &Aggregator{entries: entries, dir: dir}
}

// Summarize returns one row per user of the company, in directory order.
func (a *Aggregator) Summarize(ctx context.Context, companyID int64, w Window) ([]Summary, error) {
	users, err := a.dir.ListCompanyUsers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("summary users: %w", err)
	}
	entries, err := a.entries.ListCompanyEntries(ctx, companyID, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("summary entries: %w", err)
	}
	running, err := a.entries.ListCompanyRunning(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("summary running entries: %w", err)
	}
	return Fold(users, entries, running), nil
}

// Fold groups entries per user and folds each group into a Summary.
//
// Totals count closed time only: a running entry adds its stored duration,
// which is zero. Last-entry fields come from the latest stopped entry.
// Running state comes from running, which may hold entries that started
// before the window; their real start is reported.
func Fold(users []store.User, entries, running []store.TimeEntry) []Summary {
	byUser := make(map[int64][]store.TimeEntry)
	for _, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	for _, group := range byUser {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].StartedAt.Before(group[j].StartedAt)
		})
	}

	runningByUser := make(map[int64]store.TimeEntry, len(running))
	for _, e := range running {
		if _, dup := runningByUser[e.UserID]; !dup {
			runningByUser[e.UserID] = e
		}
	}

	out := make([]Summary, 0, len(users))
	for _, u := range users {
		s := Summary{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			JobTitle:  u.JobTitle,
			ImageURL:  u.ImageURL,
		}

		group := byUser[u.ID]
		for _, e := range group {
			s.TotalDurationSeconds += e.Duration
		}
		for i := len(group) - 1; i >= 0; i-- {
			if group[i].IsRunning() {
				continue
			}
			start := group[i].StartedAt
			s.LastEntryStart = &start
			s.LastEntryEnd = group[i].EndedAt()
			break
		}

		if r, ok := runningByUser[u.ID]; ok {
			since := r.StartedAt
			s.Running = true
			s.RunningSince = &since
		}
		out = append(out, s)
	}
	return out
}
