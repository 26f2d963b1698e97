package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/prayer"
	"hoejeong/internal/domain/schedule"
)

// AddPrayerInput carries one prayer request.
type AddPrayerInput struct {
	Session account.Session
	Date    time.Time // defaults to today
	Name    string
	Group   string
	Content string
}

// AddPrayerDeps holds dependencies for AddPrayer.
type AddPrayerDeps struct {
	Store  RecordStore
	Locker TableLocker
	Now    func() time.Time
}

// ExecuteAddPrayer appends a prayer request for a roster member.
// PRE: Content non-blank; (Group, Name) is on the roster; session may act on Group
// POST: prayer_log gains one row authored by the session user
func ExecuteAddPrayer(ctx context.Context, input AddPrayerInput, deps AddPrayerDeps) (prayer.Entry, error) {
	date := input.Date
	if date.IsZero() {
		date = deps.Now()
	}
	e := prayer.Entry{
		Date:    schedule.Day(date),
		Name:    strings.TrimSpace(input.Name),
		Group:   strings.TrimSpace(input.Group),
		Content: strings.TrimSpace(input.Content),
		Author:  sessionAuthor(input.Session.Name, input.Session.Login),
	}
	if err := e.Validate(); err != nil {
		return prayer.Entry{}, err
	}
	if err := input.Session.CheckGroup(e.Group); err != nil {
		return prayer.Entry{}, err
	}

	roster, err := loadRoster(ctx, deps.Store)
	if err != nil {
		return prayer.Entry{}, err
	}
	if !onRoster(roster, e.Group, e.Name) {
		return prayer.Entry{}, fmt.Errorf("%s/%s: %w", e.Group, e.Name, member.ErrUnknownMember)
	}

	if err := appendRow(ctx, deps.Store, deps.Locker, storage.TablePrayer, e.Row()); err != nil {
		return prayer.Entry{}, err
	}

	slog.Info("prayer_event", "event", "prayer_added", "name", e.Name, "group", e.Group, "by", input.Session.Login)
	return e, nil
}
