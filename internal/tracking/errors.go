package tracking

import (
	"errors"
	"fmt"

	"github.com/sadopc/punchclock/internal/store"
)

// Expected, caller-facing conditions. None of them is retried.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("access denied")
	ErrInvalidRange = errors.New("end date must be after start date")
	ErrConflict     = errors.New("time entry was modified concurrently")
)

// ErrInternalExport wraps any failure while rendering a report.
var ErrInternalExport = errors.New("unable to export time entries")

// notFound maps store.ErrNotFound onto ErrNotFound and leaves other errors alone.
func notFound(err error, what string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

// conflict maps store.ErrStale onto ErrConflict.
func conflict(err error, what string) error {
	if errors.Is(err, store.ErrStale) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}
