package attendance

import (
	"errors"
	"fmt"
	"time"

	"hoejeong/internal/domain/schedule"
)

// ErrOutsideCell is returned when an inserted record does not belong to the cell being overwritten.
var ErrOutsideCell = errors.New("record lies outside the cell being overwritten")

// Cell selects the records one reconciliation replaces.
// An empty Groups slice matches every group.
type Cell struct {
	Date     time.Time
	Meetings []string
	Groups   []string
	// Names are the members on the submitted sheet. Their rows filed under an
	// all-groups spelling instead of a real group also fall inside the cell.
	Names []string
}

// Contains reports whether r falls inside the cell.
func (c Cell) Contains(r Record) bool {
	if !schedule.Day(r.Date).Equal(schedule.Day(c.Date)) {
		return false
	}
	if !contains(c.Meetings, r.Meeting) {
		return false
	}
	if len(c.Groups) == 0 || contains(c.Groups, r.Group) {
		return true
	}
	return schedule.IsAllGroups(r.Group) && contains(c.Names, r.Name)
}

// entry is one stored row. Rows that fail to parse are carried verbatim and never
// match a cell, so they survive every overwrite.
type entry struct {
	row    map[string]string
	rec    Record
	parsed bool
}

// Ledger is an in-memory copy of attendance_log indexed by (date, meeting, group).
// It is built from a snapshot, edited, then committed back as a whole.
type Ledger struct {
	entries []entry
	index   map[CellKey][]int
}

// NewLedger indexes a snapshot of attendance rows.
// PRE: rows are keyed by column key
// POST: Every row is retained; unparseable rows are kept but not indexed
func NewLedger(rows []map[string]string) *Ledger {
	l := &Ledger{entries: make([]entry, 0, len(rows))}
	for _, row := range rows {
		rec, err := FromRow(row)
		l.entries = append(l.entries, entry{row: row, rec: rec, parsed: err == nil})
	}
	l.reindex()
	return l
}

func (l *Ledger) reindex() {
	l.index = make(map[CellKey][]int, len(l.entries))
	for i, e := range l.entries {
		if !e.parsed {
			continue
		}
		k := e.rec.Key()
		l.index[k] = append(l.index[k], i)
	}
}

// Len returns the number of stored rows, parsed or not.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Records returns every parsed record in storage order.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.entries))
	for _, e := range l.entries {
		if e.parsed {
			out = append(out, e.rec)
		}
	}
	return out
}

// Lookup returns the records stored under one cell key.
func (l *Ledger) Lookup(key CellKey) []Record {
	idx := l.index[key]
	out := make([]Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, l.entries[i].rec)
	}
	return out
}

// Select returns the records inside a cell, in storage order.
func (l *Ledger) Select(c Cell) []Record {
	var out []Record
	for _, e := range l.entries {
		if e.parsed && c.Contains(e.rec) {
			out = append(out, e.rec)
		}
	}
	return out
}

// Overwrite replaces everything in cell c with present.
// PRE: every record in present lies inside c
// POST: Select(c) equals present (duplicates collapsed); rows outside c are untouched
// INVARIANT: retained rows keep their original order and their original field values
func (l *Ledger) Overwrite(c Cell, present []Record) (deleted, inserted int, err error) {
	for _, r := range present {
		if err := r.Validate(); err != nil {
			return 0, 0, fmt.Errorf("invalid record for %s: %w", r.Name, err)
		}
		if !c.Contains(r) {
			return 0, 0, fmt.Errorf("%s/%s/%s: %w", r.Name, r.Meeting, r.Group, ErrOutsideCell)
		}
	}
	deleted, inserted = l.ReplaceWhere(c.Contains, present)
	return deleted, inserted, nil
}

// ReplaceWhere drops every parsed record matching match and appends add.
// Records in add with the same (cell, name) collapse to the first occurrence.
// PRE: none
// POST: Returns the number of rows removed and appended
func (l *Ledger) ReplaceWhere(match func(Record) bool, add []Record) (deleted, inserted int) {
	kept := l.entries[:0:0]
	for _, e := range l.entries {
		if e.parsed && match(e.rec) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	seen := make(map[identity]bool, len(add))
	for _, r := range add {
		id := r.identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		if r.Status == "" {
			r.Status = StatusPresent
		}
		kept = append(kept, entry{row: r.Row(), rec: r, parsed: true})
		inserted++
	}
	l.entries = kept
	l.reindex()
	return deleted, inserted
}

// Rows renders the ledger for a full-table write.
func (l *Ledger) Rows() []map[string]string {
	out := make([]map[string]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.row
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
