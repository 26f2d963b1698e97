package schedule

import (
	"strings"
)

// Meeting names. These are the column values stored in attendance_log.
const (
	SundayFirst     = "주일 1부"
	SundaySecond    = "주일 2부"
	SundayAfternoon = "주일 오후"
	YoungAdult      = "청년부"
	Youth           = "중고등부"
	SundaySchool    = "주일학교"
	SmallGroup      = "소그룹 모임"
	Wednesday       = "수요예배"
	FridayVigil     = "금요철야"
	DawnPrayer      = "새벽기도"
)

// Group categories used to narrow the composite Sunday schedule.
const (
	CategoryAdult      = "adult"
	CategoryYouth      = "youth"
	CategoryYoungAdult = "young_adult"
	CategoryChildren   = "children"
)

// AllGroups is the canonical spelling of the "every group" scope.
const AllGroups = "전체"

// SundayIndex is the Monday-based weekday index of Sunday.
const SundayIndex = 6

// CanonicalMeetings is the fixed column order for pivots and exports.
var CanonicalMeetings = []string{
	SundayFirst,
	SundaySecond,
	SundayAfternoon,
	YoungAdult,
	Youth,
	SundaySchool,
	SmallGroup,
	Wednesday,
	FridayVigil,
	DawnPrayer,
}

// categoryRule maps group-name keywords to a Sunday category.
// Rules are checked in order; the first hit wins.
type categoryRule struct {
	category string
	keywords []string
}

var categoryRules = []categoryRule{
	{category: CategoryYoungAdult, keywords: []string{"청년"}},
	{category: CategoryYouth, keywords: []string{"중고등", "학생", "청소년"}},
	{category: CategoryChildren, keywords: []string{"주일학교", "유치", "유년", "초등", "아동"}},
}

// MeetingSchedule is the static weekday → meetings mapping.
// Weekdays are indexed from Monday = 0.
type MeetingSchedule struct {
	Weekdays [7][]string
	Sunday   map[string][]string
}

// Default is the church's weekly schedule.
var Default = MeetingSchedule{
	Weekdays: [7][]string{
		0: nil,
		1: {DawnPrayer},
		2: {DawnPrayer, Wednesday},
		3: {DawnPrayer},
		4: {DawnPrayer, FridayVigil},
		5: {DawnPrayer, SmallGroup},
		6: nil,
	},
	Sunday: map[string][]string{
		CategoryAdult:      {SundayFirst, SundaySecond, SundayAfternoon, SmallGroup},
		CategoryYoungAdult: {SundayFirst, YoungAdult},
		CategoryYouth:      {SundayFirst, Youth},
		CategoryChildren:   {SundaySchool},
	},
}

// IsAllGroups reports whether scope selects every group.
func IsAllGroups(scope string) bool {
	switch strings.TrimSpace(scope) {
	case "", AllGroups, "전체 보기", "전체 합계", "all":
		return true
	}
	return false
}

// CategoryOf classifies a group name for the Sunday schedule.
// PRE: none
// POST: Returns CategoryAdult when no keyword matches
func CategoryOf(group string) string {
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(group, kw) {
				return rule.category
			}
		}
	}
	return CategoryAdult
}

// MeetingsFor returns the ordered meetings askable on a weekday for a group.
// PRE: weekday is a Monday-based index
// POST: Returns an empty (non-nil) slice when nothing is held that day
// INVARIANT: The result is a fresh slice; callers may modify it
func (s MeetingSchedule) MeetingsFor(weekday int, group string) []string {
	if weekday < 0 || weekday > SundayIndex {
		return []string{}
	}
	if weekday != SundayIndex {
		return append([]string{}, s.Weekdays[weekday]...)
	}
	if IsAllGroups(group) {
		seen := make(map[string]bool)
		for _, meetings := range s.Sunday {
			for _, m := range meetings {
				seen[m] = true
			}
		}
		return inCanonicalOrder(seen)
	}
	return append([]string{}, s.Sunday[CategoryOf(group)]...)
}

// IsAskable reports whether meeting is held on weekday for group.
func (s MeetingSchedule) IsAskable(weekday int, group, meeting string) bool {
	for _, m := range s.MeetingsFor(weekday, group) {
		if m == meeting {
			return true
		}
	}
	return false
}

// MeetingsFor looks up the Default schedule.
func MeetingsFor(weekday int, group string) []string {
	return Default.MeetingsFor(weekday, group)
}

// CanonicalIndex returns the position of meeting in CanonicalMeetings, or -1.
func CanonicalIndex(meeting string) int {
	for i, m := range CanonicalMeetings {
		if m == meeting {
			return i
		}
	}
	return -1
}

func inCanonicalOrder(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, m := range CanonicalMeetings {
		if set[m] {
			out = append(out, m)
		}
	}
	return out
}
