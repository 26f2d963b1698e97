package projections

import (
	"context"
	"strings"

	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/member"
)

// MembersQuery carries input for the roster projection.
type MembersQuery struct {
	Session account.Session
	Group   string
}

// MembersResult carries the visible roster and the groups the session may switch to.
type MembersResult struct {
	Group   string          `json:"group"`
	Groups  []string        `json:"groups"`
	Members []member.Member `json:"members"`
}

// MembersDeps holds dependencies for the roster projection.
type MembersDeps struct {
	Store RecordReader
}

// QueryMembers returns the roster in scope, sorted by group then name.
// PRE: none; a blank group means the session's default scope
// POST: Returns account.ErrForbiddenGroup when the session cannot see the scope
func QueryMembers(ctx context.Context, query MembersQuery, deps MembersDeps) (MembersResult, error) {
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return MembersResult{}, err
	}

	roster, err := loadRoster(ctx, deps.Store)
	if err != nil {
		return MembersResult{}, err
	}
	c := newCollator()

	known := member.Groups(roster)
	c.SortStrings(known)

	out := make([]member.Member, 0, len(roster))
	for _, m := range roster {
		if inScope(m.Group, scope) {
			out = append(out, m)
		}
	}
	sortMembers(out, c)
	return MembersResult{
		Group:   scope,
		Groups:  query.Session.VisibleGroups(known),
		Members: out,
	}, nil
}
