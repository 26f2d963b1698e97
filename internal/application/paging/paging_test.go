package paging

import (
	"net/url"
	"testing"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		query       string
		page, perPg int
	}{
		{"", 1, DefaultPerPage},
		{"page=3&per_page=20", 3, 20},
		{"page=-1&per_page=7", 1, DefaultPerPage},
		{"page=abc", 1, DefaultPerPage},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got := ParseParams(q)
		if got.Page != tt.page || got.PerPage != tt.perPg {
			t.Errorf("ParseParams(%q) = %+v, want page %d per %d", tt.query, got, tt.page, tt.perPg)
		}
	}
}

func TestSlice(t *testing.T) {
	items := make([]int, 45)
	for i := range items {
		items[i] = i
	}

	p := Slice(items, Params{Page: 3, PerPage: 20})
	if len(p.Items) != 5 || p.Items[0] != 40 {
		t.Errorf("page 3 = %v", p.Items)
	}
	if p.Info.TotalPages != 3 || p.Info.Total != 45 {
		t.Errorf("info = %+v", p.Info)
	}

	// Past the end clamps to the last page.
	p = Slice(items, Params{Page: 9, PerPage: 20})
	if p.Info.Page != 3 || len(p.Items) != 5 {
		t.Errorf("clamped page = %+v (%d items)", p.Info, len(p.Items))
	}

	empty := Slice([]string(nil), Params{Page: 1, PerPage: 20})
	if empty.Items == nil || len(empty.Items) != 0 || empty.Info.TotalPages != 1 {
		t.Errorf("empty = %+v", empty)
	}
}
