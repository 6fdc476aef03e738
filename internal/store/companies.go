package store

import (
	"context"
	"fmt"
	"time"
)

func (s *Store) CreateCompany(ctx context.Context, name string, timeTracking bool) (*Company, error) {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (name, time_tracking_enabled, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, boolInt(timeTracking), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert company: %w", mapErr(err))
	}
	id, _ := res.LastInsertId()
	return s.GetCompany(ctx, id)
}

func (s *Store) GetCompany(ctx context.Context, id int64) (*Company, error) {
	c := &Company{}
	var createdAt, updatedAt string
	var enabled int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, time_tracking_enabled, created_at, updated_at FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &enabled, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get company %d: %w", id, mapErr(err))
	}
	c.TimeTrackingEnabled = enabled == 1
	c.CreatedAt, _ = parseTime(createdAt)
	c.UpdatedAt, _ = parseTime(updatedAt)
	return c, nil
}

// SetTimeTracking toggles the company's time tracking entitlement.
func (s *Store) SetTimeTracking(ctx context.Context, companyID int64, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET time_tracking_enabled = ?, updated_at = ? WHERE id = ?`,
		boolInt(enabled), formatTime(time.Now()), companyID,
	)
	if err != nil {
		return fmt.Errorf("update company %d: %w", companyID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update company %d: %w", companyID, ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
