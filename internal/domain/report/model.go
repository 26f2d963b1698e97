package report

import (
	"errors"
	"strings"
	"time"

	"hoejeong/internal/domain/schedule"
)

// Column keys of the report_log table.
const (
	ColDate    = "date"
	ColGroup   = "group"
	ColAuthor  = "author"
	ColContent = "content"
)

// Domain errors
var (
	ErrEmptyContent = errors.New("report content cannot be empty")
	ErrEmptyGroup   = errors.New("report must carry a group")
	ErrMissingDate  = errors.New("report must carry a date")
)

// Report is a leader's ministry report for a group.
type Report struct {
	Date    time.Time `json:"date"`
	Group   string    `json:"group"`
	Author  string    `json:"author"`
	Content string    `json:"content"`
}

// Validate checks if the Report has valid data.
// PRE: Report struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Report) Validate() error {
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(r.Group) == "" {
		return ErrEmptyGroup
	}
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// FromRow parses a report_log row.
func FromRow(row map[string]string) (Report, error) {
	d, err := schedule.ParseDate(row[ColDate])
	if err != nil {
		return Report{}, err
	}
	r := Report{
		Date:    d,
		Group:   strings.TrimSpace(row[ColGroup]),
		Author:  strings.TrimSpace(row[ColAuthor]),
		Content: row[ColContent],
	}
	if err := r.Validate(); err != nil {
		return Report{}, err
	}
	return r, nil
}

// Row renders the report for storage.
func (r Report) Row() map[string]string {
	return map[string]string{
		ColDate:    schedule.FormatDate(r.Date),
		ColGroup:   r.Group,
		ColAuthor:  r.Author,
		ColContent: r.Content,
	}
}
