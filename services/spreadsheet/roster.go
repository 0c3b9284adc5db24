// Package spreadsheetsvc adapts course data to and from xlsx workbooks.
package spreadsheetsvc

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/student"
)

const (
	firstNameHeader = "first name"
	lastNameHeader  = "last name"
)

// ParseRoster extracts students from the first worksheet of an xlsx file.
// The first row must carry "first name" and "last name" headers (matched
// case- and spacing-insensitively); the whole file is rejected before any
// row is returned when either is missing. Rows with both names blank are
// skipped.
func ParseRoster(r io.Reader) ([]student.NewStudent, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewValidationError(
			errors.Wrap(err, "not a readable xlsx file"),
			core.FieldError{Field: "file", Error: "not a readable xlsx file"},
		)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, core.NewValidationError(
			errors.New("no worksheet found"),
			core.FieldError{Field: "file", Error: "no worksheet found"},
		)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrap(err, "reading worksheet")
	}
	if len(rows) == 0 {
		return nil, core.NewValidationError(
			errors.New("worksheet is empty"),
			core.FieldError{Field: "file", Error: "worksheet is empty"},
		)
	}

	firstIdx, lastIdx := -1, -1
	for idx, header := range rows[0] {
		switch normalizeHeader(header) {
		case firstNameHeader:
			firstIdx = idx
		case lastNameHeader:
			lastIdx = idx
		}
	}
	var flds []core.FieldError
	if firstIdx < 0 {
		flds = append(flds, core.FieldError{Field: firstNameHeader, Error: "required column is missing"})
	}
	if lastIdx < 0 {
		flds = append(flds, core.FieldError{Field: lastNameHeader, Error: "required column is missing"})
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(errors.New("required columns are missing"), flds...)
	}

	var students []student.NewStudent
	for _, row := range rows[1:] {
		ns := student.NewStudent{
			FirstName: cellValue(row, firstIdx),
			LastName:  cellValue(row, lastIdx),
		}
		if ns.FirstName == "" && ns.LastName == "" {
			continue
		}
		students = append(students, ns)
	}
	return students, nil
}

// header match ignores case and inner spacing so "First  Name", "FIRSTNAME"
// and "first name" are all accepted
func normalizeHeader(header string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(header))), " ")
	switch strings.ReplaceAll(norm, " ", "") {
	case "firstname":
		return firstNameHeader
	case "lastname":
		return lastNameHeader
	}
	return norm
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
