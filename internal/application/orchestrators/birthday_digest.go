package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"hoejeong/internal/adapters/email"
	"hoejeong/internal/adapters/markdown"
	"hoejeong/internal/domain/calendar"
	"hoejeong/internal/domain/schedule"
)

// ErrNoRecipients is returned when the digest has nowhere to go.
var ErrNoRecipients = errors.New("birthday digest has no recipients")

// SendBirthdayDigestInput selects the month; zero values mean the current month.
type SendBirthdayDigestInput struct {
	Year  int
	Month int
}

// SendBirthdayDigestDeps holds dependencies for SendBirthdayDigest.
type SendBirthdayDigestDeps struct {
	Store  RecordStore
	Sender email.Sender
	From   string
	To     []string
	Now    func() time.Time
}

// SendBirthdayDigestResult reports what was sent.
type SendBirthdayDigestResult struct {
	Birthdays int
	MessageID string
}

// ExecuteSendBirthdayDigest emails the month's birthday list to the pastoral staff.
// PRE: To is non-empty
// POST: One email is sent, even for a month without birthdays
func ExecuteSendBirthdayDigest(ctx context.Context, input SendBirthdayDigestInput, deps SendBirthdayDigestDeps) (SendBirthdayDigestResult, error) {
	if len(deps.To) == 0 {
		return SendBirthdayDigestResult{}, ErrNoRecipients
	}
	now := deps.Now()
	year, month := input.Year, input.Month
	if year == 0 || month == 0 {
		year, month = now.Year(), int(now.Month())
	}

	roster, err := loadRoster(ctx, deps.Store)
	if err != nil {
		return SendBirthdayDigestResult{}, err
	}
	cal, err := calendar.Build(year, month, roster, now)
	if err != nil {
		return SendBirthdayDigestResult{}, err
	}

	md, count := digestMarkdown(cal)
	html, err := markdown.Render(md)
	if err != nil {
		return SendBirthdayDigestResult{}, err
	}

	sent, err := deps.Sender.Send(ctx, email.Message{
		To:      deps.To,
		From:    deps.From,
		Subject: fmt.Sprintf("%d년 %d월 생일 안내", year, month),
		HTML:    html,
		Text:    md,
	})
	if err != nil {
		return SendBirthdayDigestResult{}, fmt.Errorf("send birthday digest: %w", err)
	}

	slog.Info("birthday_event", "event", "digest_sent", "year", year, "month", month, "birthdays", count, "message_id", sent.MessageID)
	return SendBirthdayDigestResult{Birthdays: count, MessageID: sent.MessageID}, nil
}

// digestMarkdown lists the month's badges day by day.
func digestMarkdown(cal calendar.Month) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "## %d년 %d월 생일\n\n", cal.Year, cal.Month)

	days := make([]int, 0, len(cal.Days))
	for d := range cal.Days {
		days = append(days, d)
	}
	sort.Ints(days)

	count := 0
	for _, d := range days {
		date := time.Date(cal.Year, time.Month(cal.Month), d, 0, 0, 0, 0, time.UTC)
		for _, badge := range cal.Days[d] {
			fmt.Fprintf(&b, "- %d일 (%s) **%s**", d, schedule.WeekdayLabel(date), badge.DisplayName)
			if badge.Group != "" {
				fmt.Fprintf(&b, " · %s", badge.Group)
			}
			if badge.IsLunar {
				b.WriteString(" (음력)")
			}
			b.WriteString("\n")
			count++
		}
	}
	if count == 0 {
		b.WriteString("이번 달 생일자가 없습니다.\n")
	}
	return b.String(), count
}
