package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/student"
)

type studentRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	CourseID  string    `db:"course_id"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) unmap() student.Student {
	return student.Student{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		CourseID:  r.CourseID,
		Active:    r.Active,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const insertStudentQuery = `
	INSERT INTO student (id, first_name, last_name, course_id, active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	_, err := repo.db.ExecContext(ctx, insertStudentQuery,
		std.ID, std.FirstName, std.LastName, std.CourseID, std.Active, std.CreatedAt, std.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo studentRepository) CreateStudents(ctx context.Context, stds []student.Student) ([]student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning student batch")
	}
	for _, std := range stds {
		if _, err = tx.ExecContext(ctx, insertStudentQuery,
			std.ID, std.FirstName, std.LastName, std.CourseID, std.Active, std.CreatedAt, std.UpdatedAt); err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(err, "inserting student batch")
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing student batch")
	}
	return stds, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var r studentRow
	err := repo.db.GetContext(ctx, &r, `
		SELECT id, first_name, last_name, course_id, active, created_at, updated_at
		FROM student WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
	}
	return r.unmap(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	query := `
		SELECT id, first_name, last_name, course_id, active, created_at, updated_at
		FROM student WHERE course_id = $1`
	args := []interface{}{filter.CourseID}
	if filter.Active != nil {
		query += ` AND active = $2`
		args = append(args, *filter.Active)
	}
	query += ` ORDER BY last_name, first_name`

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.unmap())
	}
	return students, nil
}

func (repo studentRepository) CountCourseStudents(ctx context.Context, courseID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM student WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "counting course students")
	}
	return count, nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE student SET first_name = $2, last_name = $3, active = $4, updated_at = $5 WHERE id = $1`,
		std.ID, std.FirstName, std.LastName, std.Active, std.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning student delete")
	}
	// attendance entries go with the student; no cascading delete in the schema
	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance_entry WHERE student_id = $1`, id); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "deleting student attendance entries")
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "deleting student")
	}
	return errors.Wrap(tx.Commit(), "committing student delete")
}
