// Package workbook stores every table as a sheet of one .xlsx file, the same
// layout the congregation kept by hand: a header row of Korean column titles
// followed by one record per row.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"hoejeong/internal/adapters/storage"
)

// MetaSheet holds one (table, version) row per written table.
const MetaSheet = "_meta"

// Store is a RecordStore over a single workbook file.
// Writes rebuild the workbook and rename it into place.
type Store struct {
	path string
	mu   sync.Mutex
}

// Compile-time check that *Store satisfies storage.RecordStore.
var _ storage.RecordStore = (*Store)(nil)

// New creates a workbook store. The file is created on first write.
// PRE: path ends in .xlsx
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the workbook location.
func (s *Store) Path() string {
	return s.path
}

// book is the decoded workbook: raw sheet cells plus table versions.
type book struct {
	order    []string
	sheets   map[string][][]string
	versions map[string]int64
}

func emptyBook() *book {
	return &book{sheets: map[string][][]string{}, versions: map[string]int64{}}
}

func (s *Store) load() (*book, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return emptyBook(), nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := emptyBook()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		if name == MetaSheet {
			for _, r := range rows {
				if len(r) < 2 {
					continue
				}
				if v, err := strconv.ParseInt(strings.TrimSpace(r[1]), 10, 64); err == nil {
					b.versions[r[0]] = v
				}
			}
			continue
		}
		b.order = append(b.order, name)
		b.sheets[name] = rows
	}
	return b, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// decode maps sheet cells onto schema keys through the header row.
// Unknown headers are ignored; fully blank rows are skipped.
func decode(schema storage.Schema, cells [][]string) []storage.Row {
	out := []storage.Row{}
	if len(cells) == 0 {
		return out
	}
	keys := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		if k, ok := schema.KeyForHeader(strings.TrimSpace(h)); ok {
			keys[i] = k
		}
	}
	for _, r := range cells[1:] {
		if blank(r) {
			continue
		}
		row := make(storage.Row, len(schema.Columns))
		for _, c := range schema.Columns {
			row[c.Key] = ""
		}
		for i, v := range r {
			if i < len(keys) && keys[i] != "" {
				row[keys[i]] = v
			}
		}
		out = append(out, row)
	}
	return out
}

func encode(schema storage.Schema, rows []storage.Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, schema.Headers())
	for _, row := range rows {
		cells := make([]string, len(schema.Columns))
		for i, c := range schema.Columns {
			cells[i] = row[c.Key]
		}
		out = append(out, cells)
	}
	return out
}

// ReadAll returns the rows of the table's sheet. A missing file or sheet reads as empty.
// PRE: table is registered in storage.Schemas
// POST: Rows carry exactly the schema's keys
func (s *Store) ReadAll(ctx context.Context, table string) (storage.Snapshot, error) {
	schema, err := storage.LookupSchema(table)
	if err != nil {
		return storage.Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, storage.Unavailable("read", table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return storage.Snapshot{}, storage.Unavailable("read", table, err)
	}
	return storage.Snapshot{
		Table:   table,
		Rows:    decode(schema, b.sheets[table]),
		Version: b.versions[table],
	}, nil
}

// ReplaceAll rewrites the table's sheet and bumps its version. Other sheets,
// including ones no schema knows about, are carried over unchanged.
// PRE: table is registered in storage.Schemas
// INVARIANT: The file on disk is either the old or the new workbook, never a partial one
func (s *Store) ReplaceAll(ctx context.Context, table string, rows []storage.Row, expectedVersion int64) error {
	schema, err := storage.LookupSchema(table)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return storage.Unavailable("write", table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.load()
	if err != nil {
		return storage.Unavailable("write", table, err)
	}
	current := b.versions[table]
	if expectedVersion != storage.AnyVersion && expectedVersion != current {
		return fmt.Errorf("%s: read version %d, workbook at %d: %w", table, expectedVersion, current, storage.ErrVersionConflict)
	}

	if _, ok := b.sheets[table]; !ok {
		b.order = append(b.order, table)
	}
	b.sheets[table] = encode(schema, rows)
	b.versions[table] = current + 1

	if err := s.save(b); err != nil {
		return storage.Unavailable("write", table, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, cells [][]string) error {
	for i, r := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(r))
		for j, v := range r {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", name, i+1, err)
		}
	}
	return nil
}

func (s *Store) save(b *book) error {
	f := excelize.NewFile()
	defer f.Close()

	names := append(append([]string{}, b.order...), MetaSheet)
	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
			continue
		}
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	for _, name := range b.order {
		if err := writeSheet(f, name, b.sheets[name]); err != nil {
			return err
		}
	}

	meta := make([][]string, 0, len(b.versions))
	for _, name := range b.order {
		if v, ok := b.versions[name]; ok {
			meta = append(meta, []string{name, strconv.FormatInt(v, 10)})
		}
	}
	if err := writeSheet(f, MetaSheet, meta); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".workbook-*.xlsx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
