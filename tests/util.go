package testutil

import (
	"context"
	"testing"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
	"github.com/trezcool/mahudhurio/core/user"
)

func CreateUser(t *testing.T, svc user.Service, name, email, pwd string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{Name: name, Email: email, Password: pwd})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, svc course.Service, ownerID, name, grade, section string) course.Course {
	t.Helper()
	crs, err := svc.Create(context.Background(), ownerID, course.NewCourse{Name: name, Grade: grade, Section: section})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

func CreateStudent(t *testing.T, svc student.Service, courseID, firstName, lastName string) student.Student {
	t.Helper()
	std, err := svc.Create(context.Background(), courseID, student.NewStudent{FirstName: firstName, LastName: lastName})
	if err != nil {
		t.Fatalf("CreateStudent(): %v", err)
	}
	return std
}

func SaveDaySheet(t *testing.T, svc attendance.Service, courseID string, day attendance.Day, desired map[string]attendance.Status) {
	t.Helper()
	if err := svc.SaveDaySheet(context.Background(), courseID, day, desired); err != nil {
		t.Fatalf("SaveDaySheet(): %v", err)
	}
}
