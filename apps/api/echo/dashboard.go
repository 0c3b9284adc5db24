package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
)

type dashboardApi struct {
	courseSvc     course.Service
	studentSvc    student.Service
	attendanceSvc attendance.Service
}

func registerDashboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	courseSvc course.Service,
	studentSvc student.Service,
	attendanceSvc attendance.Service,
) {
	api := dashboardApi{courseSvc: courseSvc, studentSvc: studentSvc, attendanceSvc: attendanceSvc}
	g.GET("/dashboard", api.dashboard, jwt)
}

// dashboard summarizes each owned course: roster size and how many statuses
// were recorded today.
func (api *dashboardApi) dashboard(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	courses, err := api.courseSvc.QueryByOwner(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	today := attendance.Today()
	res := make([]DashboardCourse, 0, len(courses))
	for _, crs := range courses {
		students, err := api.studentSvc.Filter(ctx.Request().Context(), student.QueryFilter{CourseID: crs.ID})
		if err != nil {
			return errors.Wrap(err, "querying students")
		}
		recorded, err := api.attendanceSvc.CountDay(ctx.Request().Context(), crs.ID, today)
		if err != nil {
			return errors.Wrap(err, "counting day entries")
		}
		res = append(res, DashboardCourse{
			CourseID:      crs.ID,
			CourseName:    crs.Name,
			Grade:         crs.Grade,
			Section:       crs.Section,
			StudentCount:  len(students),
			RecordedToday: recorded,
		})
	}
	return ctx.JSON(http.StatusOK, res)
}
