package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/mahudhurio/core"
)

type (
	Repository interface {
		// QueryDayEntries returns all entries for the (courseID, day) bucket.
		QueryDayEntries(ctx context.Context, courseID string, day Day) ([]Entry, error)
		CountDayEntries(ctx context.Context, courseID string, day Day) (int, error)
		// ApplyChangeSet commits all creates, updates and deletes as one atomic
		// unit: either every mutation commits or none do. Updates only touch the
		// Status column; Comment is left as persisted.
		ApplyChangeSet(ctx context.Context, cs ChangeSet) error
		// QueryReportRows returns rows for courseID with from <= day <= to
		// (inclusive), newest day first, with course and student names joined in.
		QueryReportRows(ctx context.Context, courseID string, from, to Day) ([]ReportRow, error)
	}

	Service interface {
		// DaySheet returns the recorded entries for the (courseID, day) bucket.
		DaySheet(ctx context.Context, courseID string, day Day) ([]Entry, error)
		// SaveDaySheet reconciles the bucket's persisted entries with desired:
		// matched students are updated in place (row identity kept, comment
		// untouched), missing ones inserted, leftovers deleted; atomically.
		// Overlapping invocations for the same bucket serialize.
		// StudentIDs are not validated against the course roster here.
		SaveDaySheet(ctx context.Context, courseID string, day Day, desired map[string]Status) error
		CountDay(ctx context.Context, courseID string, day Day) (int, error)
		Report(ctx context.Context, courseID string, from, to Day) (Report, error)
	}

	service struct {
		repo Repository

		// one lock per (courseID, day) bucket; grow-only, bounded by the
		// classroom-scale bucket count
		mu      sync.Mutex
		buckets map[string]*sync.Mutex
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{
		repo:    repo,
		buckets: make(map[string]*sync.Mutex),
	}
}

func (svc *service) bucketLock(courseID string, day Day) *sync.Mutex {
	key := courseID + "@" + day.String()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	lock, ok := svc.buckets[key]
	if !ok {
		lock = new(sync.Mutex)
		svc.buckets[key] = lock
	}
	return lock
}

func (svc *service) DaySheet(ctx context.Context, courseID string, day Day) ([]Entry, error) {
	return svc.repo.QueryDayEntries(ctx, courseID, day)
}

func (svc *service) SaveDaySheet(ctx context.Context, courseID string, day Day, desired map[string]Status) error {
	for studentID, status := range desired {
		if !status.Valid() {
			return core.NewValidationError(
				fmt.Errorf("invalid status %q", status),
				core.FieldError{Field: studentID, Error: fmt.Sprintf("invalid status %q", status)},
			)
		}
	}

	lock := svc.bucketLock(courseID, day)
	lock.Lock()
	defer lock.Unlock()

	existing, err := svc.repo.QueryDayEntries(ctx, courseID, day)
	if err != nil {
		return err
	}
	lookup := make(map[string]Entry, len(existing))
	for _, ent := range existing {
		lookup[ent.StudentID] = ent
	}

	var cs ChangeSet
	for studentID, status := range desired {
		if ent, ok := lookup[studentID]; ok {
			if ent.Status != status {
				ent.Status = status
				cs.Updates = append(cs.Updates, ent)
			}
			delete(lookup, studentID) // handled
		} else {
			cs.Creates = append(cs.Creates, Entry{
				ID:        uuid.New().String(),
				StudentID: studentID,
				CourseID:  courseID,
				Day:       day,
				Status:    status,
			})
		}
	}
	// students no longer in desired
	for _, ent := range lookup {
		cs.Deletes = append(cs.Deletes, ent.ID)
	}

	if cs.Empty() {
		return nil
	}
	return svc.repo.ApplyChangeSet(ctx, cs)
}

func (svc *service) CountDay(ctx context.Context, courseID string, day Day) (int, error) {
	return svc.repo.CountDayEntries(ctx, courseID, day)
}

func (svc *service) Report(ctx context.Context, courseID string, from, to Day) (Report, error) {
	rows, err := svc.repo.QueryReportRows(ctx, courseID, from, to)
	if err != nil {
		return Report{}, err
	}

	rpt := Report{Rows: rows}
	for _, row := range rows {
		switch row.Status {
		case StatusPresent:
			rpt.Stats.Present++
		case StatusAbsent:
			rpt.Stats.Absent++
		case StatusExcused:
			rpt.Stats.Excused++
		case StatusOther:
			rpt.Stats.Other++
		}
		rpt.Stats.Total++
	}
	return rpt, nil
}
