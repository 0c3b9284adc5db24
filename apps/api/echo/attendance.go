package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
	spreadsheetsvc "github.com/trezcool/mahudhurio/services/spreadsheet"
)

type attendanceApi struct {
	svc        attendance.Service
	courseSvc  course.Service
	studentSvc student.Service
	mailSvc    core.EmailService
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc attendance.Service,
	courseSvc course.Service,
	studentSvc student.Service,
	mailSvc core.EmailService,
) {
	api := attendanceApi{svc: svc, courseSvc: courseSvc, studentSvc: studentSvc, mailSvc: mailSvc}

	// Attach jwt per route: creating the group with middleware would make Echo
	// register Any("/courses/:id") catch-alls that shadow the course detail routes.
	cg := g.Group("/courses/:id")
	cg.GET("/attendance", api.daySheet, jwt)
	cg.PUT("/attendance", api.saveDaySheet, jwt)
	cg.GET("/report", api.report, jwt)
	cg.GET("/report/export", api.exportReport, jwt)
	cg.POST("/report/email", api.emailReport, jwt)
}

// dateParam normalizes the "date" query param; today when absent.
func dateParam(ctx echo.Context) (attendance.Day, error) {
	raw := ctx.QueryParam("date")
	if raw == "" {
		return attendance.Today(), nil
	}
	day, err := attendance.ParseDay(raw)
	if err != nil {
		return "", core.NewValidationError(err, core.FieldError{Field: "date", Error: err.Error()})
	}
	return day, nil
}

// rangeParams normalizes the optional "from"/"to" query params.
func rangeParams(ctx echo.Context) (from, to attendance.Day, err error) {
	var flds []core.FieldError
	if raw := ctx.QueryParam("from"); raw != "" {
		if from, err = attendance.ParseDay(raw); err != nil {
			flds = append(flds, core.FieldError{Field: "from", Error: err.Error()})
		}
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		if to, err = attendance.ParseDay(raw); err != nil {
			flds = append(flds, core.FieldError{Field: "to", Error: err.Error()})
		}
	}
	if len(flds) > 0 {
		return "", "", core.NewValidationError(errors.New("invalid date range"), flds...)
	}
	return from, to, nil
}

func (api *attendanceApi) daySheet(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.courseSvc)
	if err != nil {
		return err
	}
	day, err := dateParam(ctx)
	if err != nil {
		return err
	}

	active := true
	students, err := api.studentSvc.Filter(ctx.Request().Context(), student.QueryFilter{CourseID: crs.ID, Active: &active})
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}

	entries, err := api.svc.DaySheet(ctx.Request().Context(), crs.ID, day)
	if err != nil {
		return errors.Wrap(err, "querying day entries")
	}
	if entries == nil {
		entries = []attendance.Entry{}
	}

	return ctx.JSON(http.StatusOK, DaySheetResponse{Date: day, Students: students, Entries: entries})
}

func (api *attendanceApi) saveDaySheet(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.courseSvc)
	if err != nil {
		return err
	}
	day, err := dateParam(ctx)
	if err != nil {
		return err
	}

	var data DaySheetRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DaySheetRequest")
	}
	if err = api.checkRoster(ctx, crs.ID, data.Entries); err != nil {
		return err
	}

	if err = api.svc.SaveDaySheet(ctx.Request().Context(), crs.ID, day, data.Entries); err != nil {
		return err
	}

	entries, err := api.svc.DaySheet(ctx.Request().Context(), crs.ID, day)
	if err != nil {
		return errors.Wrap(err, "querying day entries")
	}
	if entries == nil {
		entries = []attendance.Entry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

// checkRoster rejects studentIDs that do not belong to the course before any
// entry is written.
func (api *attendanceApi) checkRoster(ctx echo.Context, courseID string, desired map[string]attendance.Status) error {
	if len(desired) == 0 {
		return nil
	}
	students, err := api.studentSvc.Filter(ctx.Request().Context(), student.QueryFilter{CourseID: courseID})
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	roster := make(map[string]struct{}, len(students))
	for _, std := range students {
		roster[std.ID] = struct{}{}
	}

	var flds []core.FieldError
	for studentID := range desired {
		if _, ok := roster[studentID]; !ok {
			flds = append(flds, core.FieldError{Field: studentID, Error: "student is not in this course"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("unknown students"), flds...)
	}
	return nil
}

func (api *attendanceApi) report(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.courseSvc)
	if err != nil {
		return err
	}
	from, to, err := rangeParams(ctx)
	if err != nil {
		return err
	}

	rpt, err := api.svc.Report(ctx.Request().Context(), crs.ID, from, to)
	if err != nil {
		return errors.Wrap(err, "querying report")
	}
	if rpt.Rows == nil {
		rpt.Rows = []attendance.ReportRow{}
	}
	return ctx.JSON(http.StatusOK, rpt)
}

func (api *attendanceApi) buildReport(ctx echo.Context) (core.Attachment, error) {
	crs, err := getOwnedCourse(ctx, api.courseSvc)
	if err != nil {
		return core.Attachment{}, err
	}
	from, to, err := rangeParams(ctx)
	if err != nil {
		return core.Attachment{}, err
	}

	rpt, err := api.svc.Report(ctx.Request().Context(), crs.ID, from, to)
	if err != nil {
		return core.Attachment{}, errors.Wrap(err, "querying report")
	}

	at, err := spreadsheetsvc.BuildReport(crs, rpt, from, to)
	if err != nil {
		return core.Attachment{}, errors.Wrap(err, "building report workbook")
	}
	return at, nil
}

func (api *attendanceApi) exportReport(ctx echo.Context) error {
	at, err := api.buildReport(ctx)
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", at.Filename))
	return ctx.Blob(http.StatusOK, at.ContentType, at.Content.Bytes())
}

func (api *attendanceApi) emailReport(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	at, err := api.buildReport(ctx)
	if err != nil {
		return err
	}

	api.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Name: claims.Name, Address: claims.Email}},
		Subject:     "Attendance report",
		BodyStr:     fmt.Sprintf("Hi %s,\n\nPlease find the attendance report attached.\n", claims.Name),
		Attachments: []core.Attachment{at},
	})
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "The report is on its way to " + claims.Email + "."})
}
