package inmemdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/trezcool/mahudhurio/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) QueryDayEntries(_ context.Context, courseID string, day attendance.Day) ([]attendance.Entry, error) {
	repo.db.entry.mutex.RLock()
	defer repo.db.entry.mutex.RUnlock()

	var res []attendance.Entry
	for _, ent := range repo.db.entry.t {
		if ent.CourseID == courseID && ent.Day == day {
			res = append(res, *ent)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (repo *attendanceRepository) CountDayEntries(_ context.Context, courseID string, day attendance.Day) (int, error) {
	repo.db.entry.mutex.RLock()
	defer repo.db.entry.mutex.RUnlock()

	var count int
	for _, ent := range repo.db.entry.t {
		if ent.CourseID == courseID && ent.Day == day {
			count++
		}
	}
	return count, nil
}

// ApplyChangeSet stages all mutations on a copy of the table and swaps it in
// only when every mutation succeeded, mirroring a transaction.
func (repo *attendanceRepository) ApplyChangeSet(_ context.Context, cs attendance.ChangeSet) error {
	repo.db.entry.mutex.Lock()
	defer repo.db.entry.mutex.Unlock()

	staged := make(map[string]*attendance.Entry, len(repo.db.entry.t))
	for id, ent := range repo.db.entry.t {
		staged[id] = ent
	}

	var applied int
	step := func() error {
		if repo.db.entry.failAfter >= 0 && applied >= repo.db.entry.failAfter {
			err := repo.db.entry.failErr
			repo.db.entry.failAfter = -1
			repo.db.entry.failErr = nil
			return err
		}
		applied++
		return nil
	}

	for i := range cs.Creates {
		if err := step(); err != nil {
			return err
		}
		ent := cs.Creates[i]
		staged[ent.ID] = &ent
	}
	for _, upd := range cs.Updates {
		if err := step(); err != nil {
			return err
		}
		ent, ok := staged[upd.ID]
		if !ok {
			return fmt.Errorf("attendance entry %s not found", upd.ID)
		}
		clone := *ent
		clone.Status = upd.Status // comment left as persisted
		staged[upd.ID] = &clone
	}
	for _, id := range cs.Deletes {
		if err := step(); err != nil {
			return err
		}
		delete(staged, id)
	}

	repo.db.entry.t = staged
	return nil
}

func (repo *attendanceRepository) QueryReportRows(_ context.Context, courseID string, from, to attendance.Day) ([]attendance.ReportRow, error) {
	repo.db.entry.mutex.RLock()
	defer repo.db.entry.mutex.RUnlock()
	repo.db.student.mutex.RLock()
	defer repo.db.student.mutex.RUnlock()
	repo.db.course.mutex.RLock()
	defer repo.db.course.mutex.RUnlock()

	var res []attendance.ReportRow
	for _, ent := range repo.db.entry.t {
		if ent.CourseID != courseID {
			continue
		}
		if !from.IsZero() && ent.Day < from {
			continue
		}
		if !to.IsZero() && ent.Day > to {
			continue
		}
		row := attendance.ReportRow{
			Day:     ent.Day,
			Status:  ent.Status,
			Comment: ent.Comment,
		}
		if crs, ok := repo.db.course.t[ent.CourseID]; ok {
			row.CourseName = fmt.Sprintf("%s - %s %s", crs.Name, crs.Grade, crs.Section)
		}
		if std, ok := repo.db.student.t[ent.StudentID]; ok {
			row.StudentName = std.FirstName + " " + std.LastName
		}
		res = append(res, row)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Day != res[j].Day {
			return res[i].Day > res[j].Day
		}
		return res[i].StudentName < res[j].StudentName
	})
	return res, nil
}
