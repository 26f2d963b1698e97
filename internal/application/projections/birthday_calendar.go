package projections

import (
	"context"
	"strings"
	"time"

	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/calendar"
	"hoejeong/internal/domain/member"
)

// BirthdayCalendarQuery carries input for the birthday calendar projection.
type BirthdayCalendarQuery struct {
	Session account.Session
	Year    int
	Month   int
	Group   string
}

// BirthdayCalendarDeps holds dependencies for the birthday calendar projection.
type BirthdayCalendarDeps struct {
	Store RecordReader
	Now   func() time.Time
}

// QueryBirthdayCalendar builds the month's birthday calendar for the roster in scope.
// PRE: query.Month in 1..12
// POST: Returns calendar.ErrInvalidMonth for a bad month
func QueryBirthdayCalendar(ctx context.Context, query BirthdayCalendarQuery, deps BirthdayCalendarDeps) (calendar.Month, error) {
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return calendar.Month{}, err
	}
	if query.Month < 1 || query.Month > 12 {
		return calendar.Month{}, calendar.ErrInvalidMonth
	}

	roster, err := loadRoster(ctx, deps.Store)
	if err != nil {
		return calendar.Month{}, err
	}
	inGroup := make([]member.Member, 0, len(roster))
	for _, m := range roster {
		if inScope(m.Group, scope) {
			inGroup = append(inGroup, m)
		}
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	return calendar.Build(query.Year, query.Month, inGroup, now())
}
