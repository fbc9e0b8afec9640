package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core/grade"
	"github.com/abdel28fr/ecole-pwa/core/report"
)

type gradeApi struct {
	svc       *grade.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := gradeApi{
		svc:       deps.GradeSvc,
		reportSvc: deps.ReportSvc,
		validate:  deps.Validate,
	}
	canWrite := permMiddleware(canWriteGrades)

	gg := g.Group("/grades", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, canWrite)
	gg.POST("/bulk", api.createBulk, canWrite)
	gg.GET("/averages/:studentId", api.averages)
	gg.GET("/:id", api.retrieve)
	gg.PUT("/:id", api.update, canWrite)
	gg.DELETE("/:id", api.destroy, canWrite)
}

func (api *gradeApi) query(ctx echo.Context) error {
	filter := new(grade.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []grade.Grade{})
	}
	filter.Clean()

	grades, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	if grades == nil {
		grades = []grade.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, g)
}

func (api *gradeApi) createBulk(ctx echo.Context) error {
	var data grade.BulkGrades
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkGrades")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grades, err := api.svc.CreateBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grades")
	}
	return ctx.JSON(http.StatusCreated, grades)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	g, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding grade by ID")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeApi) averages(ctx echo.Context) error {
	id, err := paramID(ctx, "studentId")
	if err != nil {
		return err
	}
	rep, err := api.reportSvc.StudentReport(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, newAveragesResponse(rep))
}

type (
	SubjectAverage struct {
		SubjectID    int     `json:"subjectId"`
		Name         string  `json:"name"`
		Code         string  `json:"code"`
		Coefficient  int     `json:"coefficient"`
		Average      float64 `json:"average"`
		GradeCount   int     `json:"gradeCount"`
		Appreciation string  `json:"appreciation,omitempty"`
	}

	AveragesResponse struct {
		StudentID      int              `json:"studentId"`
		Subjects       []SubjectAverage `json:"subjects"`
		GeneralAverage float64          `json:"generalAverage"`
		Appreciation   string           `json:"appreciation"`
		TotalGrades    int              `json:"totalGrades"`
	}
)

func newAveragesResponse(rep report.StudentReport) AveragesResponse {
	res := AveragesResponse{
		StudentID:      rep.Student.ID,
		Subjects:       make([]SubjectAverage, 0, len(rep.Subjects)),
		GeneralAverage: rep.GeneralAverage,
		Appreciation:   rep.Appreciation,
		TotalGrades:    rep.TotalGrades,
	}
	for _, sr := range rep.Subjects {
		res.Subjects = append(res.Subjects, SubjectAverage{
			SubjectID:    sr.Subject.ID,
			Name:         sr.Subject.Name,
			Code:         sr.Subject.Code,
			Coefficient:  sr.Subject.Coefficient,
			Average:      sr.Average,
			GradeCount:   sr.GradeCount,
			Appreciation: sr.Appreciation,
		})
	}
	return res
}
