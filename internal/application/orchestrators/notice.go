package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/notice"
	"hoejeong/internal/domain/schedule"
)

// NoticeDeps holds dependencies for the notice orchestrators.
type NoticeDeps struct {
	Store      RecordStore
	Locker     TableLocker
	GenerateID func() string
	Now        func() time.Time
}

// --- Post Notice ---

// PostNoticeInput carries input for the post notice orchestrator.
type PostNoticeInput struct {
	Session account.Session
	Title   string
	Content string // Markdown
	Pinned  bool
}

// ExecutePostNotice publishes a church-wide notice dated today.
// PRE: session is admin; Title and Content non-blank
// POST: notice_log gains one row with a generated ID
func ExecutePostNotice(ctx context.Context, input PostNoticeInput, deps NoticeDeps) (notice.Notice, error) {
	if !input.Session.IsAdmin() {
		return notice.Notice{}, account.ErrForbidden
	}
	n := notice.Notice{
		ID:      deps.GenerateID(),
		Date:    schedule.Day(deps.Now()),
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		Author:  sessionAuthor(input.Session.Name, input.Session.Login),
		Pinned:  input.Pinned,
	}
	if err := n.Validate(); err != nil {
		return notice.Notice{}, err
	}

	if err := appendRow(ctx, deps.Store, deps.Locker, storage.TableNotice, n.Row()); err != nil {
		return notice.Notice{}, err
	}

	slog.Info("notice_event", "event", "notice_posted", "notice_id", n.ID, "title", n.Title, "by", input.Session.Login)
	return n, nil
}

// --- Delete Notice ---

// DeleteNoticeInput carries input for the delete notice orchestrator.
type DeleteNoticeInput struct {
	Session  account.Session
	NoticeID string
}

// ExecuteDeleteNotice removes a notice by ID.
// PRE: session is admin; NoticeID exists
// POST: No row of notice_log carries NoticeID
func ExecuteDeleteNotice(ctx context.Context, input DeleteNoticeInput, deps NoticeDeps) error {
	if !input.Session.IsAdmin() {
		return account.ErrForbidden
	}
	id := strings.TrimSpace(input.NoticeID)
	if id == "" {
		return notice.ErrMissingID
	}

	err := editNotices(ctx, deps, func(rows []storage.Row) ([]storage.Row, error) {
		kept := rows[:0:0]
		for _, row := range rows {
			if strings.TrimSpace(row[notice.ColID]) != id {
				kept = append(kept, row)
			}
		}
		if len(kept) == len(rows) {
			return nil, fmt.Errorf("%s: %w", id, notice.ErrNotFound)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	slog.Info("notice_event", "event", "notice_deleted", "notice_id", id, "by", input.Session.Login)
	return nil
}

// --- Pin/Unpin Notice ---

// PinNoticeInput carries input for the pin/unpin notice orchestrator.
type PinNoticeInput struct {
	Session  account.Session
	NoticeID string
	Pinned   bool // true = pin, false = unpin
}

// ExecutePinNotice pins or unpins a notice.
// PRE: session is admin; NoticeID exists
// POST: The notice's pinned flag equals Pinned
func ExecutePinNotice(ctx context.Context, input PinNoticeInput, deps NoticeDeps) (notice.Notice, error) {
	if !input.Session.IsAdmin() {
		return notice.Notice{}, account.ErrForbidden
	}
	id := strings.TrimSpace(input.NoticeID)
	if id == "" {
		return notice.Notice{}, notice.ErrMissingID
	}

	var updated notice.Notice
	err := editNotices(ctx, deps, func(rows []storage.Row) ([]storage.Row, error) {
		for i, row := range rows {
			if strings.TrimSpace(row[notice.ColID]) != id {
				continue
			}
			n, err := notice.FromRow(row)
			if err != nil {
				return nil, fmt.Errorf("notice %s: %w", id, err)
			}
			if input.Pinned {
				err = n.Pin()
			} else {
				err = n.Unpin()
			}
			if err != nil {
				return nil, err
			}
			rows[i] = n.Row()
			updated = n
			return rows, nil
		}
		return nil, fmt.Errorf("%s: %w", id, notice.ErrNotFound)
	})
	if err != nil {
		return notice.Notice{}, err
	}

	action := "notice_pinned"
	if !input.Pinned {
		action = "notice_unpinned"
	}
	slog.Info("notice_event", "event", action, "notice_id", id, "by", input.Session.Login)
	return updated, nil
}

func editNotices(ctx context.Context, deps NoticeDeps, edit func([]storage.Row) ([]storage.Row, error)) error {
	return withTableLock(ctx, deps.Locker, storage.TableNotice, func() error {
		snap, err := deps.Store.ReadAll(ctx, storage.TableNotice)
		if err != nil {
			return fmt.Errorf("read notices: %w", err)
		}
		rows, err := edit(snap.Rows)
		if err != nil {
			return err
		}
		if err := deps.Store.ReplaceAll(ctx, storage.TableNotice, rows, snap.Version); err != nil {
			return fmt.Errorf("write notices: %w", err)
		}
		return nil
	})
}
