package projections

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/schedule"
)

// RecordReader is the read half of the record store. Projections never write.
type RecordReader interface {
	ReadAll(ctx context.Context, table string) (storage.Snapshot, error)
}

// loadAttendance parses attendance_log, skipping rows that do not parse.
func loadAttendance(ctx context.Context, store RecordReader) ([]attendance.Record, error) {
	snap, err := store.ReadAll(ctx, storage.TableAttendance)
	if err != nil {
		return nil, fmt.Errorf("read attendance: %w", err)
	}
	return attendance.NewLedger(snap.Rows).Records(), nil
}

// loadRoster parses the members table, skipping rows without a name or group.
func loadRoster(ctx context.Context, store RecordReader) ([]member.Member, error) {
	snap, err := store.ReadAll(ctx, storage.TableMembers)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	out := make([]member.Member, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		m, err := member.FromRow(row)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// inScope reports whether a row's group falls under scope.
func inScope(group, scope string) bool {
	return schedule.IsAllGroups(scope) || group == scope
}

// newCollator orders Korean names by 가나다 order.
// A Collator is not safe for concurrent use, so each query builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.Korean)
}

// sortMembers orders a roster by group, then name.
func sortMembers(members []member.Member, c *collate.Collator) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Group != members[j].Group {
			return c.CompareString(members[i].Group, members[j].Group) < 0
		}
		return c.CompareString(members[i].Name, members[j].Name) < 0
	})
}
