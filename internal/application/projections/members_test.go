package projections

import (
	"context"
	"errors"
	"testing"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/schedule"
)

func seededRoster() *fakeReader {
	f := newFakeReader()
	f.seed(storage.TableMembers,
		memberRow("홍길동", "청년부", "", ""),
		memberRow("박영희", "1구역", "", ""),
		memberRow("김철수", "청년부", "", ""),
		memberRow("강감찬", "1구역", "", ""),
		storage.Row{"name": "무소속", "group": ""},
	)
	return f
}

func TestQueryMembers_AdminSeesEveryGroupSorted(t *testing.T) {
	got, err := QueryMembers(context.Background(), MembersQuery{Session: adminSession}, MembersDeps{Store: seededRoster()})
	if err != nil {
		t.Fatalf("QueryMembers: %v", err)
	}
	if got.Group != schedule.AllGroups {
		t.Errorf("Group = %q, want the all scope", got.Group)
	}
	want := []string{"1구역/강감찬", "1구역/박영희", "청년부/김철수", "청년부/홍길동"}
	if len(got.Members) != len(want) {
		t.Fatalf("Members = %+v", got.Members)
	}
	for i, w := range want {
		if g := got.Members[i].Group + "/" + got.Members[i].Name; g != w {
			t.Errorf("Members[%d] = %s, want %s", i, g, w)
		}
	}
	if len(got.Groups) != 2 || got.Groups[0] != "1구역" || got.Groups[1] != "청년부" {
		t.Errorf("Groups = %v", got.Groups)
	}
}

func TestQueryMembers_LeaderScope(t *testing.T) {
	got, err := QueryMembers(context.Background(), MembersQuery{Session: leaderSession("청년부")}, MembersDeps{Store: seededRoster()})
	if err != nil {
		t.Fatalf("QueryMembers: %v", err)
	}
	if got.Group != "청년부" || len(got.Members) != 2 {
		t.Errorf("got %q with %d members", got.Group, len(got.Members))
	}
	if len(got.Groups) != 1 || got.Groups[0] != "청년부" {
		t.Errorf("Groups = %v, want only 청년부", got.Groups)
	}

	_, err = QueryMembers(context.Background(), MembersQuery{Session: leaderSession("청년부"), Group: "1구역"}, MembersDeps{Store: seededRoster()})
	if !errors.Is(err, account.ErrForbiddenGroup) {
		t.Errorf("err = %v, want ErrForbiddenGroup", err)
	}
}
