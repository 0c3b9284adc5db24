package spreadsheetsvc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
)

const (
	statsSheet  = "Statistics"
	detailSheet = "Detailed Report"

	// XlsxContentType is the MIME type of .xlsx workbooks.
	XlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BuildReport renders a report as a two-sheet xlsx attachment: per-status
// tallies on the first sheet, one row per entry on the second.
func BuildReport(crs course.Course, rpt attendance.Report, from, to attendance.Day) (core.Attachment, error) {
	file := excelize.NewFile()

	statsIdx := file.NewSheet(statsSheet)
	file.NewSheet(detailSheet)
	file.DeleteSheet(file.GetSheetName(0)) // default "Sheet1"
	file.SetActiveSheet(statsIdx)

	writeStats(file, crs, rpt.Stats, from, to)
	writeRows(file, rpt.Rows)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return core.Attachment{}, errors.Wrap(err, "writing workbook")
	}
	return core.Attachment{
		Content:     buf,
		ContentType: XlsxContentType,
		Filename:    ReportFilename(crs, from, to),
	}, nil
}

// ReportFilename names the workbook after the course and range, e.g.
// "attendance-mathematics-4th-a-2021-03-01-2021-03-31.xlsx".
func ReportFilename(crs course.Course, from, to attendance.Day) string {
	parts := []string{"attendance", crs.Name, crs.Grade, crs.Section}
	if !from.IsZero() {
		parts = append(parts, from.String())
	}
	if !to.IsZero() {
		parts = append(parts, to.String())
	}
	name := strings.Join(parts, "-")
	name = strings.Join(strings.Fields(strings.ToLower(name)), "-")
	return name + ".xlsx"
}

func writeStats(file *excelize.File, crs course.Course, stats attendance.Stats, from, to attendance.Day) {
	rangeStr := "all days"
	if !from.IsZero() || !to.IsZero() {
		rangeStr = fmt.Sprintf("%s to %s", orDash(from), orDash(to))
	}

	rows := [][]interface{}{
		{"Course", fmt.Sprintf("%s - %s %s", crs.Name, crs.Grade, crs.Section)},
		{"Range", rangeStr},
		{},
		{"Status", "Count"},
		{"Present", stats.Present},
		{"Absent", stats.Absent},
		{"Excused", stats.Excused},
		{"Other", stats.Other},
		{"Total", stats.Total},
	}
	writeSheet(file, statsSheet, rows)
	_ = file.SetColWidth(statsSheet, "A", "B", 20)
}

func writeRows(file *excelize.File, rows []attendance.ReportRow) {
	data := make([][]interface{}, 0, len(rows)+1)
	data = append(data, []interface{}{"Date", "Course", "Student", "Status", "Comment"})
	for _, row := range rows {
		data = append(data, []interface{}{
			row.Day.String(),
			row.CourseName,
			row.StudentName,
			string(row.Status),
			row.Comment.String,
		})
	}
	writeSheet(file, detailSheet, data)
	_ = file.SetColWidth(detailSheet, "A", "E", 22)
}

func writeSheet(file *excelize.File, sheet string, rows [][]interface{}) {
	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			_ = file.SetCellValue(sheet, cell, val)
		}
	}
}

func orDash(d attendance.Day) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
