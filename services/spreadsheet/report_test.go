package spreadsheetsvc

import (
	"bytes"
	"testing"

	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
)

func TestBuildReport(t *testing.T) {
	crs := course.Course{ID: "crs1", Name: "Mathematics", Grade: "4th", Section: "A"}
	rpt := attendance.Report{
		Stats: attendance.Stats{Present: 2, Absent: 1, Total: 3},
		Rows: []attendance.ReportRow{
			{Day: "2021-03-16", CourseName: "Mathematics - 4th A", StudentName: "Ana Lopez", Status: attendance.StatusPresent},
			{Day: "2021-03-15", CourseName: "Mathematics - 4th A", StudentName: "Ana Lopez", Status: attendance.StatusAbsent, Comment: null.StringFrom("sick")},
			{Day: "2021-03-15", CourseName: "Mathematics - 4th A", StudentName: "Bruno Mendez", Status: attendance.StatusPresent},
		},
	}

	at, err := BuildReport(crs, rpt, "2021-03-15", "2021-03-16")
	if err != nil {
		t.Fatalf("BuildReport() error = %v", err)
	}
	if at.ContentType != XlsxContentType {
		t.Errorf("ContentType = %s, want %s", at.ContentType, XlsxContentType)
	}
	if want := "attendance-mathematics-4th-a-2021-03-15-2021-03-16.xlsx"; at.Filename != want {
		t.Errorf("Filename = %s, want %s", at.Filename, want)
	}

	file, err := excelize.OpenReader(bytes.NewReader(at.Content.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Statistics" || sheets[1] != "Detailed Report" {
		t.Fatalf("sheets = %v, want [Statistics, Detailed Report]", sheets)
	}

	stats, err := file.GetRows("Statistics")
	if err != nil {
		t.Fatalf("GetRows(Statistics) error = %v", err)
	}
	if got := stats[0][1]; got != "Mathematics - 4th A" {
		t.Errorf("course cell = %q, want %q", got, "Mathematics - 4th A")
	}
	tallies := map[string]string{}
	for _, row := range stats {
		if len(row) == 2 {
			tallies[row[0]] = row[1]
		}
	}
	for label, want := range map[string]string{"Present": "2", "Absent": "1", "Excused": "0", "Other": "0", "Total": "3"} {
		if tallies[label] != want {
			t.Errorf("%s = %s, want %s", label, tallies[label], want)
		}
	}

	detail, err := file.GetRows("Detailed Report")
	if err != nil {
		t.Fatalf("GetRows(Detailed Report) error = %v", err)
	}
	if len(detail) != 4 {
		t.Fatalf("detail rows = %d, want 4", len(detail))
	}
	wantHeader := []string{"Date", "Course", "Student", "Status", "Comment"}
	for i, h := range wantHeader {
		if detail[0][i] != h {
			t.Errorf("header[%d] = %s, want %s", i, detail[0][i], h)
		}
	}
	if detail[2][4] != "sick" {
		t.Errorf("comment cell = %q, want %q", detail[2][4], "sick")
	}

	t.Run("empty report still renders", func(t *testing.T) {
		at, err := BuildReport(crs, attendance.Report{}, "", "")
		if err != nil {
			t.Fatalf("BuildReport() error = %v", err)
		}
		if want := "attendance-mathematics-4th-a.xlsx"; at.Filename != want {
			t.Errorf("Filename = %s, want %s", at.Filename, want)
		}
	})
}
