package member

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	digitRun     = regexp.MustCompile(`\d+`)
	trailingTime = regexp.MustCompile(`\s+\d{1,2}:\d{2}(:\d{2})?$`)
)

var lunarFlagValues = map[string]bool{
	"음력": true, "음": true,
	"y": true, "yes": true, "true": true, "1": true, "o": true,
}

var lunarMarkers = []string{"음력", "(음)", "음 "}

// ParseBirthday is the lenient adapter for the free-text birthday column.
// It takes the last two runs of digits as month and day, so "1990-05-02",
// "1990.5.2", "05-02" and "5/2" all parse. A trailing clock time is ignored.
// PRE: none
// POST: ok is false for fewer than two numbers or an impossible month/day
func ParseBirthday(raw string) (month, day int, ok bool) {
	s := trailingTime.ReplaceAllString(strings.TrimSpace(raw), "")
	tokens := digitRun.FindAllString(s, -1)
	if len(tokens) < 2 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(tokens[len(tokens)-2])
	if err != nil {
		return 0, 0, false
	}
	day, err = strconv.Atoi(tokens[len(tokens)-1])
	if err != nil {
		return 0, 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, false
	}
	return month, day, true
}

// IsLunar reports whether a birthday is kept on the lunar calendar, from either
// the flag column or a marker written into the birthday text itself.
func IsLunar(flag, birthday string) bool {
	if lunarFlagValues[strings.ToLower(strings.TrimSpace(flag))] {
		return true
	}
	for _, m := range lunarMarkers {
		if strings.Contains(birthday, m) {
			return true
		}
	}
	return false
}
