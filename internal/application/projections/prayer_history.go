package projections

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/prayer"
)

// PrayerHistoryQuery carries input for the prayer log projection.
type PrayerHistoryQuery struct {
	Session account.Session
	Group   string
	// Name narrows the log to one member. Optional.
	Name string
}

// PrayerHistoryDeps holds dependencies for the prayer log projection.
type PrayerHistoryDeps struct {
	Store RecordReader
}

// QueryPrayerHistory returns prayer requests in scope, newest first.
// PRE: none; a blank group means the session's default scope
// POST: Entries on the same date keep newest-written first
func QueryPrayerHistory(ctx context.Context, query PrayerHistoryQuery, deps PrayerHistoryDeps) ([]prayer.Entry, error) {
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return nil, err
	}
	snap, err := deps.Store.ReadAll(ctx, storage.TablePrayer)
	if err != nil {
		return nil, fmt.Errorf("read prayer log: %w", err)
	}

	name := strings.TrimSpace(query.Name)
	out := make([]prayer.Entry, 0, len(snap.Rows))
	for i := len(snap.Rows) - 1; i >= 0; i-- {
		e, err := prayer.FromRow(snap.Rows[i])
		if err != nil {
			continue
		}
		if !inScope(e.Group, scope) || (name != "" && e.Name != name) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
