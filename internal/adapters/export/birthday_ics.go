package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"hoejeong/internal/domain/calendar"
)

// iCalendar header values.
const (
	ICalProdID  = "-//Hoejeong//Birthday Calendar//KO"
	ICalName    = "생일 달력"
	ICalVersion = "2.0"
	ICalScale   = "GREGORIAN"
	ICalMethod  = "PUBLISH"
	ICalDomain  = "hoejeong"
)

// StubVCalendar is written when the month has no birthdays, since the encoder
// rejects a calendar without components.
const StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:" + ICalVersion + "\r\nPRODID:" + ICalProdID + "\r\nEND:VCALENDAR\r\n"

// uidNamespace scopes birthday UIDs so they stay stable across exports.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://hoejeong/birthdays"))

// WriteBirthdayICS writes one all-day event per badge of month.
// PRE: month came from calendar.Build
// POST: Event UIDs depend only on (year, month, day, group, name)
func WriteBirthdayICS(w io.Writer, month calendar.Month, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, ICalVersion)
	cal.Props.SetText(ical.PropProductID, ICalProdID)
	cal.Props.SetText("X-WR-CALNAME", ICalName)
	cal.Props.SetText(ical.PropCalendarScale, ICalScale)
	cal.Props.SetText(ical.PropMethod, ICalMethod)

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(now.UTC())

	for day := 1; day <= calendar.DaysIn(month.Year, month.Month); day++ {
		for _, b := range month.Days[day] {
			date := time.Date(month.Year, time.Month(month.Month), day, 0, 0, 0, 0, time.UTC)
			key := fmt.Sprintf("%04d-%02d-%02d|%s|%s", month.Year, month.Month, day, b.Group, b.DisplayName)

			event := ical.NewEvent()
			event.Props.SetText(ical.PropUID, uuid.NewSHA1(uidNamespace, []byte(key)).String()+"@"+ICalDomain)
			event.Props.SetText(ical.PropSummary, summary(b))
			if b.Group != "" {
				event.Props.SetText(ical.PropDescription, b.Group)
			}
			start := ical.NewProp(ical.PropDateTimeStart)
			start.SetDate(date)
			event.Props.Set(start)
			event.Props.Set(stamp)
			cal.Children = append(cal.Children, event.Component)
		}
	}

	if len(cal.Children) == 0 {
		_, err := io.WriteString(w, StubVCalendar)
		return err
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func summary(b calendar.Badge) string {
	if b.IsLunar {
		return b.DisplayName + " 생일 (음력)"
	}
	return b.DisplayName + " 생일"
}
