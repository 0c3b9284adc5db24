package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type entryRow struct {
	ID        string         `db:"id"`
	StudentID string         `db:"student_id"`
	CourseID  string         `db:"course_id"`
	Day       attendance.Day `db:"day"`
	Status    string         `db:"status"`
	Comment   null.String    `db:"comment"`
}

func (r entryRow) unmap() attendance.Entry {
	return attendance.Entry{
		ID:        r.ID,
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Day:       r.Day,
		Status:    attendance.Status(r.Status),
		Comment:   r.Comment,
	}
}

type reportRow struct {
	Day         attendance.Day `db:"day"`
	CourseName  string         `db:"course_name"`
	StudentName string         `db:"student_name"`
	Status      string         `db:"status"`
	Comment     null.String    `db:"comment"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) QueryDayEntries(ctx context.Context, courseID string, day attendance.Day) ([]attendance.Entry, error) {
	var rows []entryRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, student_id, course_id, day, status, comment
		FROM attendance_entry WHERE course_id = $1 AND day = $2`, courseID, day)
	if err != nil {
		return nil, errors.Wrap(err, "querying day entries")
	}
	entries := make([]attendance.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.unmap())
	}
	return entries, nil
}

func (repo attendanceRepository) CountDayEntries(ctx context.Context, courseID string, day attendance.Day) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM attendance_entry WHERE course_id = $1 AND day = $2`, courseID, day)
	if err != nil {
		return 0, errors.Wrap(err, "counting day entries")
	}
	return count, nil
}

func (repo attendanceRepository) ApplyChangeSet(ctx context.Context, cs attendance.ChangeSet) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning change set")
	}
	rollback := func(err error, msg string) error {
		_ = tx.Rollback()
		return errors.Wrap(err, msg)
	}

	for _, ent := range cs.Creates {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO attendance_entry (id, student_id, course_id, day, status, comment)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ent.ID, ent.StudentID, ent.CourseID, ent.Day, string(ent.Status), ent.Comment); err != nil {
			return rollback(err, "inserting attendance entry")
		}
	}
	for _, ent := range cs.Updates {
		// status only; comment stays as persisted
		if _, err = tx.ExecContext(ctx, `
			UPDATE attendance_entry SET status = $2 WHERE id = $1`,
			ent.ID, string(ent.Status)); err != nil {
			return rollback(err, "updating attendance entry")
		}
	}
	for _, id := range cs.Deletes {
		if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_entry WHERE id = $1`, id); err != nil {
			return rollback(err, "deleting attendance entry")
		}
	}
	return errors.Wrap(tx.Commit(), "committing change set")
}

func (repo attendanceRepository) QueryReportRows(ctx context.Context, courseID string, from, to attendance.Day) ([]attendance.ReportRow, error) {
	query := `
		SELECT a.day,
		       c.name || ' - ' || c.grade || ' ' || c.section AS course_name,
		       s.first_name || ' ' || s.last_name AS student_name,
		       a.status, a.comment
		FROM attendance_entry a
		JOIN student s ON s.id = a.student_id
		JOIN course c ON c.id = a.course_id
		WHERE a.course_id = $1`
	args := []interface{}{courseID}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND a.day >= $2`
	}
	if !to.IsZero() {
		args = append(args, to)
		if from.IsZero() {
			query += ` AND a.day <= $2`
		} else {
			query += ` AND a.day <= $3`
		}
	}
	query += ` ORDER BY a.day DESC, student_name`

	var rows []reportRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying report rows")
	}
	report := make([]attendance.ReportRow, 0, len(rows))
	for _, r := range rows {
		report = append(report, attendance.ReportRow{
			Day:         r.Day,
			CourseName:  r.CourseName,
			StudentName: r.StudentName,
			Status:      attendance.Status(r.Status),
			Comment:     r.Comment,
		})
	}
	return report, nil
}
