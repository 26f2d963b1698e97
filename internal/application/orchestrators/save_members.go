package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/member"
)

// SaveMembersInput carries an edited roster.
type SaveMembersInput struct {
	Session account.Session
	Members []member.Member
}

// SaveMembersDeps holds dependencies for SaveMembers.
type SaveMembersDeps struct {
	Store  RecordStore
	Locker TableLocker
}

// SaveMembersResult reports how the roster was written.
type SaveMembersResult struct {
	Saved    int `json:"saved"`
	Retained int `json:"retained"`
}

// ExecuteSaveMembers bulk-saves the roster. An admin replaces the whole table;
// a leader replaces only the rows of the groups they lead and every other row
// is carried over verbatim.
// PRE: every member validates; (group, name) is unique; a leader edits only their groups
// POST: members holds Retained untouched rows followed by the Saved edited rows
func ExecuteSaveMembers(ctx context.Context, input SaveMembersInput, deps SaveMembersDeps) (SaveMembersResult, error) {
	edited := make([]member.Member, 0, len(input.Members))
	seen := make(map[member.Key]bool, len(input.Members))
	for _, m := range input.Members {
		m.Name = strings.TrimSpace(m.Name)
		m.Group = strings.TrimSpace(m.Group)
		m.Sex = strings.TrimSpace(m.Sex)
		m.Birthday = strings.TrimSpace(m.Birthday)
		m.Phone = member.NormalizePhone(m.Phone)
		m.FamilyID = member.NormalizeFamilyID(m.FamilyID)
		if err := m.Validate(); err != nil {
			return SaveMembersResult{}, err
		}
		if err := input.Session.CheckGroup(m.Group); err != nil {
			return SaveMembersResult{}, fmt.Errorf("%s/%s: %w", m.Group, m.Name, err)
		}
		if seen[m.Key()] {
			return SaveMembersResult{}, fmt.Errorf("%s/%s: %w", m.Group, m.Name, member.ErrDuplicateMember)
		}
		seen[m.Key()] = true
		edited = append(edited, m)
	}

	var result SaveMembersResult
	err := withTableLock(ctx, deps.Locker, storage.TableMembers, func() error {
		snap, err := deps.Store.ReadAll(ctx, storage.TableMembers)
		if err != nil {
			return fmt.Errorf("read roster: %w", err)
		}

		var rows []storage.Row
		if !input.Session.IsAdmin() {
			for _, row := range snap.Rows {
				if !input.Session.CanAccessGroup(strings.TrimSpace(row[member.ColGroup])) {
					rows = append(rows, row)
				}
			}
		}
		result.Retained = len(rows)
		for _, m := range edited {
			rows = append(rows, m.Row())
		}
		result.Saved = len(edited)

		if err := deps.Store.ReplaceAll(ctx, storage.TableMembers, rows, snap.Version); err != nil {
			return fmt.Errorf("write roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaveMembersResult{}, err
	}

	slog.Info("member_event", "event", "roster_saved", "saved", result.Saved, "retained", result.Retained, "by", input.Session.Login)
	return result, nil
}
