package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ToCSV writes the header block, one row per entry and a total row.
func ToCSV(out io.Writer, r Report) error {
	loc := r.location()
	w := csv.NewWriter(out)

	name := r.User.FullName()
	rows := [][]string{
		{"User", name},
		{"Company", r.Company.Name},
		{"Range", r.From.In(loc).Format(rangeLayout), r.To.In(loc).Format(rangeLayout)},
		{"Generated at", r.GeneratedAt.In(loc).Format(generatedLayout)},
		{},
		{"User", "Started at", "Ended at", "Duration"},
	}
	for _, e := range r.Entries {
		endStr := ""
		if end := e.EndedAt(); end != nil {
			endStr = end.In(loc).Format(rangeLayout)
		}
		rows = append(rows, []string{
			name,
			e.StartedAt.In(loc).Format(rangeLayout),
			endStr,
			FormatDuration(e.Duration),
		})
	}
	rows = append(rows, []string{}, []string{"Total", FormatDuration(r.total())})

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
