package storage

import (
	"fmt"

	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/notice"
	"hoejeong/internal/domain/prayer"
	"hoejeong/internal/domain/report"
)

// Table names.
const (
	TableMembers    = "members"
	TableAttendance = "attendance_log"
	TableUsers      = "users"
	TablePrayer     = "prayer_log"
	TableReport     = "report_log"
	TableNotice     = "notice_log"
)

// Column maps a logical key to the header used in the original spreadsheet.
type Column struct {
	Key    string
	Header string
}

// Schema lists a table's columns in display order. It also defines the
// default columns of an empty table.
type Schema struct {
	Table   string
	Columns []Column
}

// Keys returns the column keys in order.
func (s Schema) Keys() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Key
	}
	return out
}

// Headers returns the sheet headers in order.
func (s Schema) Headers() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Header
	}
	return out
}

// KeyForHeader resolves a sheet header (or a key written as a header) to its key.
func (s Schema) KeyForHeader(h string) (string, bool) {
	for _, c := range s.Columns {
		if c.Header == h || c.Key == h {
			return c.Key, true
		}
	}
	return "", false
}

// Normalize returns a copy of row carrying exactly the schema's keys.
// Missing keys become "", unknown keys are dropped.
func (s Schema) Normalize(row Row) Row {
	out := make(Row, len(s.Columns))
	for _, c := range s.Columns {
		out[c.Key] = row[c.Key]
	}
	return out
}

// Schemas is the registry of every table the application stores.
var Schemas = []Schema{
	{Table: TableMembers, Columns: []Column{
		{member.ColName, "이름"},
		{member.ColSex, "성별"},
		{member.ColBirthday, "생일"},
		{member.ColLunarFlag, "음력"},
		{member.ColPhone, "전화번호"},
		{member.ColAddress, "주소"},
		{member.ColFamilyID, "가족ID"},
		{member.ColGroup, "소그룹"},
		{member.ColNote, "비고"},
	}},
	{Table: TableAttendance, Columns: []Column{
		{attendance.ColDate, "날짜"},
		{attendance.ColMeeting, "모임명"},
		{attendance.ColName, "이름"},
		{attendance.ColGroup, "소그룹"},
		{attendance.ColStatus, "출석여부"},
	}},
	{Table: TableUsers, Columns: []Column{
		{account.ColLogin, "아이디"},
		{account.ColPasswordHash, "비밀번호"},
		{account.ColName, "이름"},
		{account.ColRole, "역할"},
		{account.ColGroups, "담당소그룹"},
	}},
	{Table: TablePrayer, Columns: []Column{
		{prayer.ColDate, "날짜"},
		{prayer.ColName, "이름"},
		{prayer.ColGroup, "소그룹"},
		{prayer.ColContent, "내용"},
		{prayer.ColAuthor, "작성자"},
	}},
	{Table: TableReport, Columns: []Column{
		{report.ColDate, "날짜"},
		{report.ColGroup, "소그룹"},
		{report.ColAuthor, "작성자"},
		{report.ColContent, "내용"},
	}},
	{Table: TableNotice, Columns: []Column{
		{notice.ColID, "ID"},
		{notice.ColDate, "날짜"},
		{notice.ColTitle, "제목"},
		{notice.ColContent, "내용"},
		{notice.ColAuthor, "작성자"},
		{notice.ColPinned, "고정"},
	}},
}

// LookupSchema returns the schema for table.
// PRE: none
// POST: Returns ErrUnknownTable for tables outside the registry
func LookupSchema(table string) (Schema, error) {
	for _, s := range Schemas {
		if s.Table == table {
			return s, nil
		}
	}
	return Schema{}, fmt.Errorf("%q: %w", table, ErrUnknownTable)
}
