package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const entryColumns = `id, user_id, company_id, started_at, duration, status, version, created_at, updated_at`

// CreateEntry inserts e and fills in its ID, Version and audit fields.
// A second RUNNING entry for the same user fails with ErrDuplicate.
func (s *Store) CreateEntry(ctx context.Context, e *TimeEntry) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO time_entries (user_id, company_id, started_at, duration, status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		e.UserID, e.CompanyID, formatTime(e.StartedAt), e.Duration, string(e.Status), formatTime(now), formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", mapErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	e.ID = id
	e.Version = 1
	e.StartedAt = e.StartedAt.UTC().Truncate(time.Millisecond)
	e.CreatedAt = now.UTC().Truncate(time.Millisecond)
	e.UpdatedAt = e.CreatedAt
	return nil
}

// SaveEntry writes the mutable fields of e if e.Version is still the stored
// version, then bumps e.Version. A concurrent writer makes it fail with ErrStale.
func (s *Store) SaveEntry(ctx context.Context, e *TimeEntry) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET started_at = ?, duration = ?, status = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		formatTime(e.StartedAt), e.Duration, string(e.Status), formatTime(now), e.ID, e.Version,
	)
	if err != nil {
		return fmt.Errorf("save entry %d: %w", e.ID, mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save entry %d: %w", e.ID, err)
	}
	if n == 0 {
		if _, err := s.GetEntry(ctx, e.ID); err != nil {
			return err
		}
		return fmt.Errorf("save entry %d at version %d: %w", e.ID, e.Version, ErrStale)
	}
	e.Version++
	e.StartedAt = e.StartedAt.UTC().Truncate(time.Millisecond)
	e.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id int64) (*TimeEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, mapErr(err))
	}
	return e, nil
}

// FindRunning returns the user's RUNNING entry, or nil when the timer is off.
func (s *Store) FindRunning(ctx context.Context, userID int64) (*TimeEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE user_id = ? AND status = ?`,
		userID, string(StatusRunning),
	))
	if err != nil {
		if err = mapErr(err); errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get running entry: %w", err)
	}
	return e, nil
}

// ListUserEntries returns the user's entries with from <= started_at <= to,
// oldest first.
func (s *Store) ListUserEntries(ctx context.Context, userID int64, from, to time.Time) ([]TimeEntry, error) {
	return s.listEntries(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE user_id = ? AND started_at >= ? AND started_at <= ?
		 ORDER BY started_at, id`,
		userID, formatTime(from), formatTime(to),
	)
}

// ListCompanyEntries returns every entry of the company with
// from <= started_at <= to.
func (s *Store) ListCompanyEntries(ctx context.Context, companyID int64, from, to time.Time) ([]TimeEntry, error) {
	return s.listEntries(ctx,
		`SELECT `+entryColumns+` FROM time_entries
		 WHERE company_id = ? AND started_at >= ? AND started_at <= ?
		 ORDER BY id`,
		companyID, formatTime(from), formatTime(to),
	)
}

// ListCompanyRunning returns the company's RUNNING entries regardless of when
// they started.
func (s *Store) ListCompanyRunning(ctx context.Context, companyID int64) ([]TimeEntry, error) {
	return s.listEntries(ctx,
		`SELECT `+entryColumns+` FROM time_entries WHERE company_id = ? AND status = ? ORDER BY id`,
		companyID, string(StatusRunning),
	)
}

func (s *Store) listEntries(ctx context.Context, query string, args ...any) ([]TimeEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row scanner) (*TimeEntry, error) {
	e := &TimeEntry{}
	var startedAt, createdAt, updatedAt, status string
	err := row.Scan(&e.ID, &e.UserID, &e.CompanyID, &startedAt, &e.Duration, &status, &e.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	if e.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	e.CreatedAt, _ = parseTime(createdAt)
	e.UpdatedAt, _ = parseTime(updatedAt)
	return e, nil
}
