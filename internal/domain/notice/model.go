package notice

import (
	"errors"
	"strings"
	"time"

	"hoejeong/internal/domain/schedule"
)

// Column keys of the notice_log table.
const (
	ColID      = "id"
	ColDate    = "date"
	ColTitle   = "title"
	ColContent = "content"
	ColAuthor  = "author"
	ColPinned  = "pinned"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength = 200
)

// Domain errors
var (
	ErrEmptyTitle    = errors.New("notice title cannot be empty")
	ErrTitleTooLong  = errors.New("notice title cannot exceed 200 characters")
	ErrEmptyContent  = errors.New("notice content cannot be empty")
	ErrMissingID     = errors.New("notice must have an ID")
	ErrNotFound      = errors.New("notice not found")
	ErrAlreadyPinned = errors.New("notice is already pinned")
	ErrNotPinned     = errors.New("notice is not pinned")
)

// Notice is a church-wide announcement. Content is Markdown.
type Notice struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Author  string    `json:"author"`
	Pinned  bool      `json:"pinned"`
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if n.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(n.Title)) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Pin marks the notice as pinned to the top of the list.
// PRE: Notice is not already pinned
// POST: Pinned is true
func (n *Notice) Pin() error {
	if n.Pinned {
		return ErrAlreadyPinned
	}
	n.Pinned = true
	return nil
}

// Unpin removes the pinned status.
// PRE: Notice is pinned
// POST: Pinned is false
func (n *Notice) Unpin() error {
	if !n.Pinned {
		return ErrNotPinned
	}
	n.Pinned = false
	return nil
}

// FromRow parses a notice_log row.
func FromRow(row map[string]string) (Notice, error) {
	n := Notice{
		ID:      strings.TrimSpace(row[ColID]),
		Title:   strings.TrimSpace(row[ColTitle]),
		Content: row[ColContent],
		Author:  strings.TrimSpace(row[ColAuthor]),
		Pinned:  strings.TrimSpace(row[ColPinned]) == "Y",
	}
	d, err := schedule.ParseDate(row[ColDate])
	if err != nil {
		return Notice{}, err
	}
	n.Date = d
	if err := n.Validate(); err != nil {
		return Notice{}, err
	}
	return n, nil
}

// Row renders the notice for storage.
func (n Notice) Row() map[string]string {
	pinned := ""
	if n.Pinned {
		pinned = "Y"
	}
	return map[string]string{
		ColID:      n.ID,
		ColDate:    schedule.FormatDate(n.Date),
		ColTitle:   n.Title,
		ColContent: n.Content,
		ColAuthor:  n.Author,
		ColPinned:  pinned,
	}
}
