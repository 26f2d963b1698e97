package projections

import (
	"context"
	"fmt"
	"sort"

	"hoejeong/internal/adapters/markdown"
	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/notice"
)

// NoticeView is a notice with its Markdown content rendered.
type NoticeView struct {
	notice.Notice
	HTML string `json:"html"`
}

// NoticesDeps holds dependencies for the notice board projection.
type NoticesDeps struct {
	Store RecordReader
}

// QueryNotices returns the notice board: pinned notices first, then newest first.
// Every signed-in user may read it, so there is no session check.
// PRE: none
// POST: Rows that fail to parse are skipped
func QueryNotices(ctx context.Context, deps NoticesDeps) ([]NoticeView, error) {
	snap, err := deps.Store.ReadAll(ctx, storage.TableNotice)
	if err != nil {
		return nil, fmt.Errorf("read notices: %w", err)
	}
	out := make([]NoticeView, 0, len(snap.Rows))
	for i := len(snap.Rows) - 1; i >= 0; i-- {
		n, err := notice.FromRow(snap.Rows[i])
		if err != nil {
			continue
		}
		html, err := markdown.Render(n.Content)
		if err != nil {
			return nil, fmt.Errorf("notice %s: %w", n.ID, err)
		}
		out = append(out, NoticeView{Notice: n, HTML: html})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}
