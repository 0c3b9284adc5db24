package attendance

import (
	"github.com/volatiletech/null/v8"
)

// Status of a student on a given day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusExcused Status = "excused"
	StatusOther   Status = "other"
)

var Statuses = []Status{StatusPresent, StatusAbsent, StatusExcused, StatusOther}

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusExcused, StatusOther:
		return true
	}
	return false
}

// Entry records one student's status for one day.
// At most one Entry exists per (StudentID, Day) pair; CourseID is derivable from
// StudentID but stored for query convenience and written from the bucket at save time.
type Entry struct {
	ID        string      `json:"id"`
	StudentID string      `json:"student_id"`
	CourseID  string      `json:"course_id"`
	Day       Day         `json:"date"`
	Status    Status      `json:"status"`
	Comment   null.String `json:"comment,omitempty"`
}

// ChangeSet is the minimal set of mutations reconciling a bucket's persisted
// entries with a desired mapping. It is applied as one atomic unit.
type ChangeSet struct {
	Creates []Entry
	Updates []Entry  // full rows; only Status differs from the persisted row
	Deletes []string // entry IDs
}

func (cs ChangeSet) Empty() bool {
	return len(cs.Creates) == 0 && len(cs.Updates) == 0 && len(cs.Deletes) == 0
}

// Stats tallies entries per status over a queried range.
type Stats struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Excused int `json:"excused"`
	Other   int `json:"other"`
	Total   int `json:"total"`
}

// ReportRow is one detailed report line with course and student names joined in.
type ReportRow struct {
	Day         Day         `json:"date"`
	CourseName  string      `json:"course"`
	StudentName string      `json:"student"`
	Status      Status      `json:"status"`
	Comment     null.String `json:"comment,omitempty"`
}

// Report is the aggregate view over a (course, date range) scope.
type Report struct {
	Stats Stats       `json:"stats"`
	Rows  []ReportRow `json:"rows"`
}
