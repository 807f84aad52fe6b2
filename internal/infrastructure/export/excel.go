// Package export renders performance reports into spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// Sheet names in the exported workbook.
const (
	ReportSheet  = "Report"
	SummarySheet = "Summary"
)

// ReportHeader is the first row of the report sheet.
var ReportHeader = []string{"ID", "Name", "Grades", "Average", "Performance"}

// twoDecimals is excelize's built-in number format "0.00".
const twoDecimals = 2

// Workbook builds an in-memory workbook for the report. The caller must
// Close it.
func Workbook(report *query.PerformanceReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("add summary sheet: %w", err)
	}

	if err := writeReportSheet(f, report); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeSummarySheet(f, report); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write encodes the report as .xlsx into w.
func Write(w io.Writer, report *query.PerformanceReport) error {
	f, err := Workbook(report)
	if err != nil {
		return shared.Persistence("Export", "build workbook", err)
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return shared.Persistence("Export", "write workbook", err)
	}
	return nil
}

// Save writes the report to path. A missing .xlsx extension is added.
func Save(path string, report *query.PerformanceReport) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", shared.NewDomainError("export", "Save", shared.ErrEmptyValue, "export path cannot be empty")
	}
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		path += ".xlsx"
	}

	f, err := Workbook(report)
	if err != nil {
		return "", shared.Persistence("Export", "build workbook", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", shared.Persistence("Export", "save "+path, err)
	}
	return path, nil
}

func writeReportSheet(f *excelize.File, report *query.PerformanceReport) error {
	header := make([]interface{}, len(ReportHeader))
	for i, h := range ReportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(ReportSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, e := range report.Entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.StudentID, e.Name, FormatGrades(e.Grades), e.Average, e.Performance.String()}
		if err := f.SetSheetRow(ReportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if n := len(report.Entries); n > 0 {
		numeric, err := f.NewStyle(&excelize.Style{NumFmt: twoDecimals})
		if err != nil {
			return fmt.Errorf("number style: %w", err)
		}
		if err := f.SetCellStyle(ReportSheet, "D2", "D"+strconv.Itoa(n+1), numeric); err != nil {
			return fmt.Errorf("apply number style: %w", err)
		}
	}

	if err := f.SetColWidth(ReportSheet, "B", "C", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	return f.SetColWidth(ReportSheet, "E", "E", 16)
}

func writeSummarySheet(f *excelize.File, report *query.PerformanceReport) error {
	s := report.Summary
	rows := [][]interface{}{
		{"Policy", report.Policy.String()},
		{"Generated at", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Students", s.Students},
		{"Graded", s.Graded},
		{"Class average", s.ClassAverage},
		{"Highest", s.Highest},
		{"Lowest", s.Lowest},
		{},
		{"Performance", "Count"},
	}
	for _, lc := range s.Distribution {
		rows = append(rows, []interface{}{lc.Label.String(), lc.Count})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 18)
}

// FormatGrades joins grades with ", " using the shortest exact form.
func FormatGrades(grades []float64) string {
	parts := make([]string, 0, len(grades))
	for _, g := range grades {
		parts = append(parts, shared.Grade(g).String())
	}
	return strings.Join(parts, ", ")
}
