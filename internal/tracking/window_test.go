package tracking

import (
	"testing"
	"time"
)

func TestWeek(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		from time.Time
	}{
		{"monday", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"sunday night", time.Date(2026, 3, 8, 23, 59, 59, 0, time.UTC), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"across month", time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC), time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Week(tt.now, time.UTC)
			if !w.From.Equal(tt.from) {
				t.Fatalf("From = %v, want %v", w.From, tt.from)
			}
			wantTo := tt.from.AddDate(0, 0, 7).Add(-time.Millisecond)
			if !w.To.Equal(wantTo) {
				t.Fatalf("To = %v, want %v", w.To, wantTo)
			}
			if !w.Contains(tt.now) {
				t.Fatal("week should contain now")
			}
		})
	}
}

func TestWeekUsesLocation(t *testing.T) {
	east := time.FixedZone("UTC+5", 5*3600)
	// Sunday 22:00 UTC is already Monday in UTC+5.
	now := time.Date(2026, 3, 8, 22, 0, 0, 0, time.UTC)
	w := Week(now, east)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, east)
	if !w.From.Equal(want) {
		t.Fatalf("From = %v, want %v", w.From, want)
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	week := Week(now, time.UTC)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if w := ResolveWindow(nil, nil, now, time.UTC); w != week {
		t.Fatalf("defaults = %+v", w)
	}
	w := ResolveWindow(&from, nil, now, time.UTC)
	if !w.From.Equal(from) || !w.To.Equal(week.To) {
		t.Fatalf("from only = %+v", w)
	}
	w = ResolveWindow(nil, &to, now, time.UTC)
	if !w.From.Equal(week.From) || !w.To.Equal(to) {
		t.Fatalf("to only = %+v", w)
	}
}

func TestContainsIsClosed(t *testing.T) {
	w := Window{
		From: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	}
	if !w.Contains(w.From) || !w.Contains(w.To) {
		t.Fatal("bounds should be inclusive")
	}
	if w.Contains(w.To.Add(time.Nanosecond)) || w.Contains(w.From.Add(-time.Nanosecond)) {
		t.Fatal("outside instants should be excluded")
	}
}

func TestParseTimestamp(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*3600)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-02T09:15:00.000Z", time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)},
		{"2026-03-02T09:15:00Z", time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)},
		{"2026-03-02T09:15:00.250+02:00", time.Date(2026, 3, 2, 7, 15, 0, 250e6, time.UTC)},
		{"2026-03-02", time.Date(2026, 3, 2, 0, 0, 0, 0, east)},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in, east)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "yesterday", "2026-13-01", "02/03/2026"} {
		if _, err := ParseTimestamp(bad, east); err == nil {
			t.Fatalf("ParseTimestamp(%q) should fail", bad)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 2, 9, 15, 0, 123456789, time.UTC)
	if got := FormatTimestamp(ts); got != "2026-03-02T09:15:00.123Z" {
		t.Fatalf("FormatTimestamp = %q", got)
	}
}
