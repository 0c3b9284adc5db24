package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

var (
	// errors
	ErrNotFound    = errors.New("course not found")
	ErrHasStudents = errors.New("a course with students cannot be deleted")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// QueryOwnerCourses returns all courses owned by the given user.
		QueryOwnerCourses(ctx context.Context, ownerID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error
	}

	// StudentCounter reports how many students reference a course.
	StudentCounter interface {
		CountCourseStudents(ctx context.Context, courseID string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ownerID string, nc NewCourse) (Course, error)
		// GetOwned returns the course only if it is owned by ownerID; ErrNotFound otherwise.
		GetOwned(ctx context.Context, id, ownerID string) (Course, error)
		QueryByOwner(ctx context.Context, ownerID string) ([]Course, error)
		Update(ctx context.Context, id, ownerID string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, id, ownerID string) error
	}

	service struct {
		repo     Repository
		students StudentCounter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentCounter) *service {
	return &service{repo: repo, students: students}
}

func (svc *service) Create(ctx context.Context, ownerID string, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		ID:        uuid.New().String(),
		Name:      nc.Name,
		Grade:     nc.Grade,
		Section:   nc.Section,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) GetOwned(ctx context.Context, id, ownerID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if crs.OwnerID != ownerID {
		return Course{}, ErrNotFound
	}
	return crs, nil
}

func (svc *service) QueryByOwner(ctx context.Context, ownerID string) ([]Course, error) {
	return svc.repo.QueryOwnerCourses(ctx, ownerID)
}

func (svc *service) Update(ctx context.Context, id, ownerID string, uc UpdateCourse) (Course, error) {
	crs, err := svc.GetOwned(ctx, id, ownerID)
	if err != nil {
		return Course{}, err
	}
	crs.Name = uc.Name
	crs.Grade = uc.Grade
	crs.Section = uc.Section
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, id, ownerID string) error {
	crs, err := svc.GetOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}
	count, err := svc.students.CountCourseStudents(ctx, crs.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return core.NewValidationError(ErrHasStudents, core.FieldError{Field: "id", Error: ErrHasStudents.Error()})
	}
	return svc.repo.DeleteCourse(ctx, crs.ID)
}
