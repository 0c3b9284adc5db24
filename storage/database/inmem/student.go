package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mahudhurio/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()
	repo.db.student.t[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) CreateStudents(_ context.Context, stds []student.Student) ([]student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()
	for i := range stds {
		std := stds[i]
		repo.db.student.t[std.ID] = &std
	}
	return stds, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	if std, ok := repo.db.student.t[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	res := make([]student.Student, 0, len(repo.db.student.t))
	for _, std := range repo.db.student.t {
		if std.CourseID != filter.CourseID {
			continue
		}
		if filter.Active != nil && std.Active != *filter.Active {
			continue
		}
		res = append(res, *std)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].LastName != res[j].LastName {
			return res[i].LastName < res[j].LastName
		}
		return res[i].FirstName < res[j].FirstName
	})
	return res, nil
}

func (repo *studentRepository) CountCourseStudents(_ context.Context, courseID string) (int, error) {
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()

	var count int
	for _, std := range repo.db.student.t {
		if std.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()

	if _, ok := repo.db.student.t[std.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.student.t[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.student.mutex.Lock()
	defer repo.db.student.mutex.Unlock()
	repo.db.entry.mutex.Lock()
	defer repo.db.entry.mutex.Unlock()

	for entID, ent := range repo.db.entry.t {
		if ent.StudentID == id {
			delete(repo.db.entry.t, entID)
		}
	}
	delete(repo.db.student.t, id)
	return nil
}
