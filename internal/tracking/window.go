package tracking

import (
	"fmt"
	"time"
)

// TimestampLayout is the canonical boundary form of a timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Window is the closed range [From, To] used to select entries by start time.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Week returns the week containing now in loc: Monday 00:00 through
// Sunday 23:59:59.999.
func Week(now time.Time, loc *time.Location) Window {
	d := now.In(loc)
	y, m, day := d.Date()
	today := time.Date(y, m, day, 0, 0, 0, 0, loc)
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	return Window{
		From: monday,
		To:   monday.AddDate(0, 0, 7).Add(-time.Millisecond),
	}
}

// ResolveWindow fills missing bounds from the current week.
func ResolveWindow(from, to *time.Time, now time.Time, loc *time.Location) Window {
	w := Week(now, loc)
	if from != nil {
		w.From = *from
	}
	if to != nil {
		w.To = *to
	}
	return w
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds
// (the canonical layout is a subset) or a bare date, read as midnight in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", s, TimestampLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
