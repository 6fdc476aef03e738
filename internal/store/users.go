package store

import (
	"context"
	"fmt"
	"time"
)

const userColumns = `id, company_id, first_name, last_name, job_title, image_url, can_view_time_tracking, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u User) (*User, error) {
	now := formatTime(time.Now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (company_id, first_name, last_name, job_title, image_url, can_view_time_tracking, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.CompanyID, u.FirstName, u.LastName, u.JobTitle, u.ImageURL, boolInt(u.CanViewTimeTracking), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapErr(err))
	}
	id, _ := res.LastInsertId()
	return s.GetUser(ctx, id)
}

func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, mapErr(err))
	}
	return u, nil
}

// ListCompanyUsers returns every user of the company ordered by id.
func (s *Store) ListCompanyUsers(ctx context.Context, companyID int64) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = ? ORDER BY id`, companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetTimeTrackingAccess grants or revokes the user's view permission.
func (s *Store) SetTimeTrackingAccess(ctx context.Context, userID int64, allowed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET can_view_time_tracking = ?, updated_at = ? WHERE id = ?`,
		boolInt(allowed), formatTime(time.Now()), userID,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update user %d: %w", userID, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*User, error) {
	u := &User{}
	var createdAt, updatedAt string
	var canView int
	err := row.Scan(&u.ID, &u.CompanyID, &u.FirstName, &u.LastName, &u.JobTitle, &u.ImageURL, &canView, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.CanViewTimeTracking = canView == 1
	u.CreatedAt, _ = parseTime(createdAt)
	u.UpdatedAt, _ = parseTime(updatedAt)
	return u, nil
}
