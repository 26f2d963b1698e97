// Package export renders projections into downloadable files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hoejeong/internal/application/projections"
	"hoejeong/internal/domain/schedule"
)

// Sheet names of the statistics workbook.
const (
	SheetPivot   = "개인별 출석"
	SheetDaily   = "날짜별 출석"
	SheetRanking = "출석 순위"
)

// WriteStatsWorkbook writes the pivot, daily and ranking tables of stats as an xlsx workbook.
// PRE: stats came from projections.QueryAttendanceStats
// POST: The workbook has three sheets with a header row each; empty stats still write headers
func WriteStatsWorkbook(w io.Writer, stats projections.AttendanceStatsResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetPivot); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetRanking} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	pivot := [][]interface{}{withColumns([]interface{}{"이름"}, stats.Columns, "합계")}
	for _, p := range stats.Pivot {
		pivot = append(pivot, withCounts([]interface{}{p.Name}, p.Counts, p.Total))
	}
	totalsRow := []interface{}{"합계"}
	sum := 0
	for _, n := range stats.MeetingTotals {
		sum += n
	}
	pivot = append(pivot, withCounts(totalsRow, stats.MeetingTotals, sum))
	if err := writeRows(f, SheetPivot, pivot); err != nil {
		return err
	}

	daily := [][]interface{}{withColumns([]interface{}{"날짜", "요일"}, stats.Columns, "합계")}
	for _, d := range stats.Daily {
		daily = append(daily, withCounts([]interface{}{schedule.FormatDate(d.Date), d.Weekday}, d.Counts, d.Total))
	}
	if err := writeRows(f, SheetDaily, daily); err != nil {
		return err
	}

	ranking := [][]interface{}{{"순위", "이름", "출석"}}
	rank := 0
	for i, r := range stats.Ranking {
		if i == 0 || r.Count != stats.Ranking[i-1].Count {
			rank = i + 1
		}
		ranking = append(ranking, []interface{}{rank, r.Name, r.Count})
	}
	if err := writeRows(f, SheetRanking, ranking); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func withColumns(lead []interface{}, columns []string, tail string) []interface{} {
	row := append([]interface{}{}, lead...)
	for _, c := range columns {
		row = append(row, c)
	}
	return append(row, tail)
}

func withCounts(lead []interface{}, counts []int, total int) []interface{} {
	row := append([]interface{}{}, lead...)
	for _, n := range counts {
		row = append(row, n)
	}
	return append(row, total)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
