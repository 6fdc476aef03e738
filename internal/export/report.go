package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/sadopc/punchclock/internal/store"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

const (
	// rangeLayout is the machine-parsable form used for the range and entry cells.
	rangeLayout = "2006-01-02T15:04:05"
	// generatedLayout is the human form of the generation timestamp.
	generatedLayout = "Jan 2, 2006, 3:04:05 PM"
)

// Report is one user's entries over [From, To], ready to render.
type Report struct {
	User        store.User
	Company     store.Company
	From        time.Time
	To          time.Time
	Entries     []store.TimeEntry
	GeneratedAt time.Time
	Location    *time.Location
}

// File is a rendered report with its suggested download name.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Render encodes r in format f.
func Render(r Report, f Format) (*File, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatCSV:
		err = ToCSV(&buf, r)
	case FormatJSON:
		err = ToJSON(&buf, r)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        FileName(r.User.ID, r.From, r.location(), f),
		ContentType: "application/octet-stream",
		Data:        buf.Bytes(),
	}, nil
}

// FileName is time-tracking-<userId>-<yyyy-MM>.<ext>, the month taken from
// from in loc.
func FileName(userID int64, from time.Time, loc *time.Location, f Format) string {
	return fmt.Sprintf("time-tracking-%d-%s.%s", userID, from.In(loc).Format("2006-01"), f)
}

// FormatDuration renders whole seconds as H:MM; hours are not capped at 24.
func FormatDuration(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	return fmt.Sprintf("%d:%02d", h, m)
}

func (r Report) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

func (r Report) total() int64 {
	var total int64
	for _, e := range r.Entries {
		total += e.Duration
	}
	return total
}
