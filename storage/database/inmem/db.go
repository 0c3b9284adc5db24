// Package inmemdb provides mutex-guarded map-backed repositories.
// It backs the test suites and lets them run without a database; the
// attendance table supports injected mid-changeset failures so atomicity
// behavior can be exercised.
package inmemdb

import (
	"sync"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/core/user"
)

type (
	DB struct {
		user    *userTable
		course  *courseTable
		student *studentTable
		entry   *entryTable
	}

	userTable struct {
		t     map[string]*user.User
		mutex sync.RWMutex
	}

	courseTable struct {
		t     map[string]*course.Course
		mutex sync.RWMutex
	}

	studentTable struct {
		t     map[string]*student.Student
		mutex sync.RWMutex
	}

	entryTable struct {
		t     map[string]*attendance.Entry
		mutex sync.RWMutex

		// failure injection: fail with failErr once failAfter mutations have
		// been applied within a single change set (-1 disables)
		failAfter int
		failErr   error
	}
)

func Open() *DB {
	return &DB{
		user:    &userTable{t: make(map[string]*user.User)},
		course:  &courseTable{t: make(map[string]*course.Course)},
		student: &studentTable{t: make(map[string]*student.Student)},
		entry:   &entryTable{t: make(map[string]*attendance.Entry), failAfter: -1},
	}
}

// FailChangeSetAfter makes the next ApplyChangeSet fail with err once n
// mutations have been applied. The injection resets after it fires.
func (db *DB) FailChangeSetAfter(n int, err error) {
	db.entry.mutex.Lock()
	defer db.entry.mutex.Unlock()
	db.entry.failAfter = n
	db.entry.failErr = err
}
