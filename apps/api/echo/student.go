package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
	"github.com/earmahsakyi/School-Management-System-sub002/core/student"
)

var errFileRequired = core.FieldError{Field: "file", Error: "this field is required"}

type studentApi struct {
	svc       student.ServiceInterface
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerStudentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc student.ServiceInterface,
	reportSvc *report.Service,
	validate *validator.Validate,
) {
	api := studentApi{svc: svc, reportSvc: reportSvc, validate: validate}
	students := sectionMiddleware(core.SectionStudents)

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, students)
	sg.POST("", api.create, students)
	sg.POST("/import", api.importStudents, students)
	sg.GET("/:id/report-card", api.reportCard, sectionMiddleware(core.SectionGrades))

	// detail endpoints
	dg := sg.Group("/:id", students, objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return svc.Get(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	stu, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) importStudents(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(err, errFileRequired)
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	res, err := api.svc.Import(ctx.Request().Context(), f)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	code := http.StatusOK
	if len(res.Created) > 0 {
		code = http.StatusCreated
	}
	return ctx.JSON(code, res)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving student from context")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	stu, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving student from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate, stu, api.svc); err != nil {
		return err
	}

	stu, err := api.svc.Update(ctx.Request().Context(), stu, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	stu, ok := ctx.Get(contextObjectKey).(student.Student)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving student from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), stu.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) reportCard(ctx echo.Context) error {
	var query ReportCardQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ReportCardQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	file, err := api.reportSvc.ReportCard(ctx.Request().Context(), ctx.Param("id"), query.AcademicYear, query.Term)
	if err != nil {
		return errors.Wrap(err, "generating report card")
	}
	return sendPDF(ctx, file)
}

// ReportCardQuery selects the records of a report card. A blank term asks for the yearly card.
type ReportCardQuery struct {
	AcademicYear string `query:"academic_year" json:"academic_year" validate:"required,academicyear"`
	Term         string `query:"term" json:"term" validate:"omitempty,term"`
}

func (q *ReportCardQuery) Validate(validate *validator.Validate) error {
	q.AcademicYear = core.CleanString(q.AcademicYear)
	q.Term = core.CleanString(q.Term)
	return validate.Struct(q)
}
