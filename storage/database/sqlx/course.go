package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/course"
)

type courseRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Grade     string    `db:"grade"`
	Section   string    `db:"section"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r courseRow) unmap() course.Course {
	return course.Course{
		ID:        r.ID,
		Name:      r.Name,
		Grade:     r.Grade,
		Section:   r.Section,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO course (id, name, grade, section, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		crs.ID, crs.Name, crs.Grade, crs.Section, crs.OwnerID, crs.CreatedAt, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	var r courseRow
	err := repo.db.GetContext(ctx, &r, `
		SELECT id, name, grade, section, owner_id, created_at, updated_at FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course by ID")
	}
	return r.unmap(), nil
}

func (repo courseRepository) QueryOwnerCourses(ctx context.Context, ownerID string) ([]course.Course, error) {
	var rows []courseRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, name, grade, section, owner_id, created_at, updated_at
		FROM course WHERE owner_id = $1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "querying owner courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.unmap())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE course SET name = $2, grade = $3, section = $4, updated_at = $5 WHERE id = $1`,
		crs.ID, crs.Name, crs.Grade, crs.Section, crs.UpdatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}
