package prayer

import (
	"errors"
	"strings"
	"time"

	"hoejeong/internal/domain/schedule"
)

// Column keys of the prayer_log table.
const (
	ColDate    = "date"
	ColName    = "name"
	ColGroup   = "group"
	ColContent = "content"
	ColAuthor  = "author"
)

// MaxContentLength bounds a single request.
const MaxContentLength = 2000

// Domain errors
var (
	ErrEmptyContent   = errors.New("prayer request content cannot be empty")
	ErrContentTooLong = errors.New("prayer request cannot exceed 2000 characters")
	ErrEmptyName      = errors.New("prayer request must name a member")
	ErrEmptyGroup     = errors.New("prayer request must carry a group")
	ErrMissingDate    = errors.New("prayer request must carry a date")
)

// Entry is one prayer request recorded for a member.
type Entry struct {
	Date    time.Time `json:"date"`
	Name    string    `json:"name"`
	Group   string    `json:"group"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Group) == "" {
		return ErrEmptyGroup
	}
	if strings.TrimSpace(e.Content) == "" {
		return ErrEmptyContent
	}
	if len([]rune(e.Content)) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// FromRow parses a prayer_log row.
func FromRow(row map[string]string) (Entry, error) {
	d, err := schedule.ParseDate(row[ColDate])
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Date:    d,
		Name:    strings.TrimSpace(row[ColName]),
		Group:   strings.TrimSpace(row[ColGroup]),
		Content: row[ColContent],
		Author:  strings.TrimSpace(row[ColAuthor]),
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Row renders the entry for storage.
func (e Entry) Row() map[string]string {
	return map[string]string{
		ColDate:    schedule.FormatDate(e.Date),
		ColName:    e.Name,
		ColGroup:   e.Group,
		ColContent: e.Content,
		ColAuthor:  e.Author,
	}
}
