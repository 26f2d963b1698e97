package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/report"
	"hoejeong/internal/domain/schedule"
)

// SubmitReportInput carries a leader's report.
type SubmitReportInput struct {
	Session account.Session
	Date    time.Time // defaults to today
	Group   string
	Content string
}

// SubmitReportDeps holds dependencies for SubmitReport.
type SubmitReportDeps struct {
	Store  RecordStore
	Locker TableLocker
	Now    func() time.Time
}

// ExecuteSubmitReport appends a ministry report for a group.
// PRE: Content non-blank; session may act on Group
// POST: report_log gains one row authored by the session user
func ExecuteSubmitReport(ctx context.Context, input SubmitReportInput, deps SubmitReportDeps) (report.Report, error) {
	date := input.Date
	if date.IsZero() {
		date = deps.Now()
	}
	r := report.Report{
		Date:    schedule.Day(date),
		Group:   strings.TrimSpace(input.Group),
		Author:  sessionAuthor(input.Session.Name, input.Session.Login),
		Content: strings.TrimSpace(input.Content),
	}
	if err := r.Validate(); err != nil {
		return report.Report{}, err
	}
	if err := input.Session.CheckGroup(r.Group); err != nil {
		return report.Report{}, err
	}

	if err := appendRow(ctx, deps.Store, deps.Locker, storage.TableReport, r.Row()); err != nil {
		return report.Report{}, err
	}

	slog.Info("report_event", "event", "report_submitted", "group", r.Group, "date", schedule.FormatDate(r.Date), "by", input.Session.Login)
	return r, nil
}
