package echoapi

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/student"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	// DaySheetRequest carries the desired student -> status mapping for one
	// (course, date) bucket.
	DaySheetRequest struct {
		Entries map[string]attendance.Status `json:"entries"`
	}

	DaySheetResponse struct {
		Date     attendance.Day     `json:"date"`
		Students []student.Student  `json:"students"`
		Entries  []attendance.Entry `json:"entries"`
	}

	DashboardCourse struct {
		CourseID      string `json:"course_id"`
		CourseName    string `json:"course_name"`
		Grade         string `json:"grade"`
		Section       string `json:"section"`
		StudentCount  int    `json:"student_count"`
		RecordedToday int    `json:"recorded_today"`
	}

	ImportResponse struct {
		Imported int               `json:"imported"`
		Students []student.Student `json:"students"`
	}
)

func (r *LoginRequest) Validate(_ context.Context, validate *validator.Validate) error {
	return validate.Struct(r)
}
