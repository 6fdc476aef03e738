package server

import (
	"time"

	"github.com/sadopc/punchclock/internal/store"
	"github.com/sadopc/punchclock/internal/tracking"
)

type entryDTO struct {
	ID              int64   `json:"id"`
	UserID          int64   `json:"userId"`
	CompanyID       int64   `json:"companyId"`
	StartedAt       string  `json:"startedAt"`
	EndedAt         *string `json:"endedAt"`
	DurationSeconds int64   `json:"durationSeconds"`
	Status          string  `json:"status"`
}

type summaryDTO struct {
	UserID               int64   `json:"userId"`
	FirstName            string  `json:"firstName"`
	LastName             string  `json:"lastName"`
	JobTitle             string  `json:"jobTitle"`
	ImageURL             string  `json:"imageUrl"`
	Running              bool    `json:"running"`
	RunningSince         *string `json:"runningSince"`
	LastEntryStart       *string `json:"lastEntryStart"`
	LastEntryEnd         *string `json:"lastEntryEnd"`
	TotalDurationSeconds int64   `json:"totalDurationSeconds"`
}

type editRequest struct {
	StartedAt string `json:"startedAt"`
	EndedAt   string `json:"endedAt"`
}

func stamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := tracking.FormatTimestamp(*t)
	return &s
}

func toEntryDTO(e *store.TimeEntry) entryDTO {
	return entryDTO{
		ID:              e.ID,
		UserID:          e.UserID,
		CompanyID:       e.CompanyID,
		StartedAt:       tracking.FormatTimestamp(e.StartedAt),
		EndedAt:         stamp(e.EndedAt()),
		DurationSeconds: e.Duration,
		Status:          string(e.Status),
	}
}

func toEntryDTOs(entries []store.TimeEntry) []entryDTO {
	out := make([]entryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryDTO(&entries[i]))
	}
	return out
}

func toSummaryDTOs(rows []tracking.Summary) []summaryDTO {
	out := make([]summaryDTO, 0, len(rows))
	for _, s := range rows {
		out = append(out, summaryDTO{
			UserID:               s.UserID,
			FirstName:            s.FirstName,
			LastName:             s.LastName,
			JobTitle:             s.JobTitle,
			ImageURL:             s.ImageURL,
			Running:              s.Running,
			RunningSince:         stamp(s.RunningSince),
			LastEntryStart:       stamp(s.LastEntryStart),
			LastEntryEnd:         stamp(s.LastEntryEnd),
			TotalDurationSeconds: s.TotalDurationSeconds,
		})
	}
	return out
}
