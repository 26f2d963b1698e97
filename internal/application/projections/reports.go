package projections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/report"
	"hoejeong/internal/domain/schedule"
)

// ReportsQuery carries input for the ministry report projection.
// A zero Start or End leaves that side of the range open.
type ReportsQuery struct {
	Session account.Session
	Group   string
	Start   time.Time
	End     time.Time
}

// ReportsDeps holds dependencies for the ministry report projection.
type ReportsDeps struct {
	Store RecordReader
}

// QueryReports returns reports in scope and range, newest first.
// PRE: none
// POST: Returns account.ErrForbiddenGroup when the session cannot see the scope
func QueryReports(ctx context.Context, query ReportsQuery, deps ReportsDeps) ([]report.Report, error) {
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return nil, err
	}
	snap, err := deps.Store.ReadAll(ctx, storage.TableReport)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}

	out := make([]report.Report, 0, len(snap.Rows))
	for i := len(snap.Rows) - 1; i >= 0; i-- {
		r, err := report.FromRow(snap.Rows[i])
		if err != nil || !inScope(r.Group, scope) {
			continue
		}
		if !query.Start.IsZero() && r.Date.Before(schedule.Day(query.Start)) {
			continue
		}
		if !query.End.IsZero() && r.Date.After(schedule.Day(query.End)) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
