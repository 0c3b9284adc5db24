package student

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	QueryFilter struct {
		CourseID string
		Active   *bool
	}

	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		// CreateStudents inserts all students atomically; either all rows commit or none do.
		CreateStudents(ctx context.Context, stds []Student) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudents applies AND operation on available QueryFilter fields.
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		CountCourseStudents(ctx context.Context, courseID string) (int, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		// DeleteStudent removes the student and their attendance entries atomically.
		DeleteStudent(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, courseID string, ns NewStudent) (Student, error)
		// BulkCreate registers all roster rows under courseID in one atomic batch.
		BulkCreate(ctx context.Context, courseID string, roster []NewStudent) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) new(courseID string, ns NewStudent, now time.Time) Student {
	return Student{
		ID:        uuid.New().String(),
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		CourseID:  courseID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (svc *service) Create(ctx context.Context, courseID string, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, svc.new(courseID, ns, time.Now().UTC()))
}

func (svc *service) BulkCreate(ctx context.Context, courseID string, roster []NewStudent) ([]Student, error) {
	now := time.Now().UTC()
	stds := make([]Student, 0, len(roster))
	for _, ns := range roster {
		stds = append(stds, svc.new(courseID, ns, now))
	}
	return svc.repo.CreateStudents(ctx, stds)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	std.FirstName = us.FirstName
	std.LastName = us.LastName
	if us.Active != nil {
		std.Active = *us.Active
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
