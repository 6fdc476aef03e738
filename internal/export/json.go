package export

import (
	"encoding/json"
	"fmt"
	"io"
)

type jsonReport struct {
	User         string      `json:"user"`
	UserID       int64       `json:"user_id"`
	Company      string      `json:"company"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	GeneratedAt  string      `json:"generated_at"`
	Count        int         `json:"count"`
	Entries      []jsonEntry `json:"entries"`
	TotalSeconds int64       `json:"total_seconds"`
	Total        string      `json:"total"`
}

type jsonEntry struct {
	ID          int64  `json:"id"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Running     bool   `json:"running,omitempty"`
}

// ToJSON writes the same report as ToCSV as an indented JSON document.
func ToJSON(w io.Writer, r Report) error {
	loc := r.location()
	total := r.total()
	doc := jsonReport{
		User:         r.User.FullName(),
		UserID:       r.User.ID,
		Company:      r.Company.Name,
		From:         r.From.In(loc).Format(rangeLayout),
		To:           r.To.In(loc).Format(rangeLayout),
		GeneratedAt:  r.GeneratedAt.In(loc).Format(generatedLayout),
		Count:        len(r.Entries),
		TotalSeconds: total,
		Total:        FormatDuration(total),
		Entries:      make([]jsonEntry, 0, len(r.Entries)),
	}

	for _, e := range r.Entries {
		endStr := ""
		if end := e.EndedAt(); end != nil {
			endStr = end.In(loc).Format(rangeLayout)
		}
		doc.Entries = append(doc.Entries, jsonEntry{
			ID:          e.ID,
			StartTime:   e.StartedAt.In(loc).Format(rangeLayout),
			EndTime:     endStr,
			DurationSec: e.Duration,
			Duration:    FormatDuration(e.Duration),
			Running:     e.IsRunning(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}
