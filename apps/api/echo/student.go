package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/course"
	"github.com/trezcool/mahudhurio/core/student"
)

type studentApi struct {
	svc       student.Service
	courseSvc course.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service, courseSvc course.Service) {
	api := studentApi{svc: svc, courseSvc: courseSvc}

	sg := g.Group("/students", jwt)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

// getOwnedStudent resolves :id as a student of a course owned by the
// authenticated teacher.
func (api *studentApi) getOwnedStudent(ctx echo.Context) (student.Student, error) {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, err
	}
	if _, err = api.courseSvc.GetOwned(ctx.Request().Context(), std.CourseID, claims.Subject); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding course by ID")
	}
	return std, nil
}

func (api *studentApi) update(ctx echo.Context) error {
	std, err := api.getOwnedStudent(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(ctx.Request().Context(), core.Validate); err != nil {
		return err
	}

	std, err = api.svc.Update(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	std, err := api.getOwnedStudent(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
