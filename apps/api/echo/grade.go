package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/grade"
)

type gradeApi struct {
	svc      grade.ServiceInterface
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc grade.ServiceInterface, validate *validator.Validate) {
	api := gradeApi{svc: svc, validate: validate}

	gg := g.Group("/grades", jwt, sectionMiddleware(core.SectionGrades))
	gg.GET("", api.query)
	gg.POST("", api.create)
	gg.POST("/preview", api.preview)
	gg.GET("/yearly-average", api.yearlyAverage)
	gg.GET("/export", api.export)

	// detail endpoints
	dg := gg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return svc.Get(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *gradeApi) query(ctx echo.Context) error {
	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Record{})
	}

	recs, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying records")
	}
	if recs == nil {
		recs = []grade.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	rec, ok := ctx.Get(contextObjectKey).(grade.Record)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving record from context")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradeApi) update(ctx echo.Context) error {
	rec, ok := ctx.Get(contextObjectKey).(grade.Record)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving record from context")
	}

	var data grade.UpdateRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRecord")
	}
	if err := data.Validate(api.validate, rec); err != nil {
		return err
	}

	rec, err := api.svc.Update(ctx.Request().Context(), rec, data)
	if err != nil {
		return errors.Wrap(err, "updating record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	rec, ok := ctx.Get(contextObjectKey).(grade.Record)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving record from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), rec.ID); err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) preview(ctx echo.Context) error {
	var data grade.PreviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PreviewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Preview(data))
}

func (api *gradeApi) yearlyAverage(ctx echo.Context) error {
	var query yearlyAverageQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to yearlyAverageQuery")
	}
	query.StudentID = core.CleanString(query.StudentID)
	query.AcademicYear = core.CleanString(query.AcademicYear)
	if err := api.validate.Struct(query); err != nil {
		return err
	}

	avg, err := api.svc.YearlyAverage(ctx.Request().Context(), query.StudentID, query.AcademicYear)
	if err != nil {
		return errors.Wrap(err, "computing yearly average")
	}
	return ctx.JSON(http.StatusOK, avg)
}

func (api *gradeApi) export(ctx echo.Context) error {
	var query ReportCardQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ReportCardQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := api.svc.Export(ctx.Request().Context(), query.AcademicYear, query.Term, &buf); err != nil {
		return errors.Wrap(err, "exporting records")
	}
	return attachment(ctx, exportName(query.AcademicYear, query.Term), mimeXLSX, buf.Bytes())
}

type yearlyAverageQuery struct {
	StudentID    string `query:"student_id" json:"student_id" validate:"required"`
	AcademicYear string `query:"academic_year" json:"academic_year" validate:"required,academicyear"`
}

func exportName(academicYear, term string) string {
	name := "results-" + strings.ReplaceAll(academicYear, "/", "-")
	if term != "" {
		name += fmt.Sprintf("-term%s", term)
	}
	return name + ".xlsx"
}
