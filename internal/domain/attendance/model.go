package attendance

import (
	"errors"
	"strings"
	"time"

	"hoejeong/internal/domain/schedule"
)

// Column keys of the attendance_log table.
const (
	ColDate    = "date"
	ColMeeting = "meeting"
	ColName    = "name"
	ColGroup   = "group"
	ColStatus  = "status"
)

// StatusPresent is the only stored status; absence is the lack of a record.
const StatusPresent = "출석"

// Domain errors
var (
	ErrEmptyName    = errors.New("attendance record must name a member")
	ErrEmptyMeeting = errors.New("attendance record must name a meeting")
	ErrEmptyGroup   = errors.New("attendance record must carry a group")
	ErrMissingDate  = errors.New("attendance record must carry a date")

	ErrMeetingNotScheduled = errors.New("meeting is not held on that day for that group")
)

// Record is one present mark: a member attended a meeting on a date.
type Record struct {
	Date    time.Time
	Meeting string
	Name    string
	Group   string
	Status  string
}

// CellKey addresses the (date, meeting, group) cell a record belongs to.
type CellKey struct {
	Date    string
	Meeting string
	Group   string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (r *Record) Validate() error {
	if r.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(r.Meeting) == "" {
		return ErrEmptyMeeting
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.Group) == "" {
		return ErrEmptyGroup
	}
	return nil
}

// Key returns the cell the record lives in.
func (r Record) Key() CellKey {
	return CellKey{Date: schedule.FormatDate(r.Date), Meeting: r.Meeting, Group: r.Group}
}

// identity is the uniqueness key inside a cell.
type identity struct {
	cell CellKey
	name string
}

func (r Record) identity() identity {
	return identity{cell: r.Key(), name: r.Name}
}

// FromRow parses a stored row into a Record.
// PRE: row is keyed by column key
// POST: Returns an error when the date is unparseable or a required field is blank
func FromRow(row map[string]string) (Record, error) {
	d, err := schedule.ParseDate(row[ColDate])
	if err != nil {
		return Record{}, err
	}
	r := Record{
		Date:    d,
		Meeting: strings.TrimSpace(row[ColMeeting]),
		Name:    strings.TrimSpace(row[ColName]),
		Group:   strings.TrimSpace(row[ColGroup]),
		Status:  strings.TrimSpace(row[ColStatus]),
	}
	if r.Status == "" {
		r.Status = StatusPresent
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Row renders the record for storage.
func (r Record) Row() map[string]string {
	status := r.Status
	if status == "" {
		status = StatusPresent
	}
	return map[string]string{
		ColDate:    schedule.FormatDate(r.Date),
		ColMeeting: r.Meeting,
		ColName:    r.Name,
		ColGroup:   r.Group,
		ColStatus:  status,
	}
}
