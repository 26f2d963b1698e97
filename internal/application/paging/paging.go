// Package paging splits already-ordered log results into pages.
package paging

import (
	"net/url"
	"strconv"
)

// DefaultPerPage is used when per_page is absent or not an allowed size.
const DefaultPerPage = 50

// PerPageOptions are the allowed page sizes.
var PerPageOptions = []int{20, 50, 100, 500}

// Params is a requested page.
type Params struct {
	Page    int // 1-indexed
	PerPage int
}

// Info describes the page that was served.
type Info struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one page of items plus where it sits in the whole.
type Page[T any] struct {
	Items []T  `json:"items"`
	Info  Info `json:"info"`
}

// ParseParams reads page and per_page. Bad or missing values fall back to defaults.
// POST: Page >= 1; PerPage is one of PerPageOptions
func ParseParams(q url.Values) Params {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !allowed(perPage) {
		perPage = DefaultPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// NewInfo clamps the requested page to what exists.
// POST: 1 <= Page <= TotalPages; TotalPages >= 1 even when total is 0
func NewInfo(p Params, total int) Info {
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	pages := (total + p.PerPage - 1) / p.PerPage
	if pages < 1 {
		pages = 1
	}
	page := min(max(p.Page, 1), pages)
	return Info{Page: page, PerPage: p.PerPage, Total: total, TotalPages: pages}
}

// Offset is the index of the first item on the page.
func (i Info) Offset() int {
	return (i.Page - 1) * i.PerPage
}

// Slice returns the requested page of items. Items is never nil.
func Slice[T any](items []T, p Params) Page[T] {
	info := NewInfo(p, len(items))
	start := min(info.Offset(), len(items))
	end := min(start+info.PerPage, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Info: info}
}

func allowed(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
