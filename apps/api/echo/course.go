package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
	spreadsheetsvc "github.com/trezcool/mahudhurio/services/spreadsheet"
)

type courseApi struct {
	svc        course.Service
	studentSvc student.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, studentSvc student.Service) {
	api := courseApi{svc: svc, studentSvc: studentSvc}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/students", api.queryStudents)
	dg.POST("/students", api.createStudent)
	dg.POST("/students/import", api.importStudents)
}

// getOwnedCourse resolves :id as a course owned by the authenticated teacher.
func getOwnedCourse(ctx echo.Context, svc course.Service) (course.Course, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return course.Course{}, err
	}
	crs, err := svc.GetOwned(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return crs, nil
}

func (api *courseApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(ctx.Request().Context(), core.Validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	courses, err := api.svc.QueryByOwner(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(ctx.Request().Context(), core.Validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) queryStudents(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.svc)
	if err != nil {
		return err
	}

	filter := student.QueryFilter{CourseID: crs.ID}
	switch ctx.QueryParam("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}

	students, err := api.studentSvc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *courseApi) createStudent(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.svc)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(ctx.Request().Context(), core.Validate); err != nil {
		return err
	}

	std, err := api.studentSvc.Create(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *courseApi) importStudents(ctx echo.Context) error {
	crs, err := getOwnedCourse(ctx, api.svc)
	if err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(
			errors.Wrap(err, "missing file"),
			core.FieldError{Field: "file", Error: "an xlsx file is required"},
		)
	}
	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = file.Close() }()

	roster, err := spreadsheetsvc.ParseRoster(file)
	if err != nil {
		return err
	}
	for i := range roster {
		if err = roster[i].Validate(ctx.Request().Context(), core.Validate); err != nil {
			return err
		}
	}
	if len(roster) == 0 {
		return core.NewValidationError(
			errors.New("no rows to import"),
			core.FieldError{Field: "file", Error: "no rows to import"},
		)
	}

	students, err := api.studentSvc.BulkCreate(ctx.Request().Context(), crs.ID, roster)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusCreated, ImportResponse{Imported: len(students), Students: students})
}
