package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/class"
	"github.com/abdel28fr/ecole-pwa/core/report"
	"github.com/abdel28fr/ecole-pwa/core/student"
	"github.com/abdel28fr/ecole-pwa/services/spreadsheet"
)

const importFileField = "file"

type studentApi struct {
	svc           *student.Service
	classSvc      *class.Service
	reportSvc     *report.Service
	validate      *validator.Validate
	translator    ut.Translator
	maxUploadSize int64
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:           deps.StudentSvc,
		classSvc:      deps.ClassSvc,
		reportSvc:     deps.ReportSvc,
		validate:      deps.Validate,
		translator:    deps.Translator,
		maxUploadSize: deps.Conf.Server.MaxUploadSize,
	}

	sg := g.Group("/students", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, adminMiddleware())
	sg.POST("/import", api.importSheet, adminMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, adminMiddleware())
	sg.DELETE("/:id", api.destroy, adminMiddleware())
	sg.GET("/:id/note", api.retrieveNote)
	sg.PUT("/:id/note", api.updateNote, adminMiddleware())
	sg.GET("/:id/report", api.report)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	std, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding student by ID")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) retrieveNote(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	note, err := api.svc.GetNote(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting student note")
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *studentApi) updateNote(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data NoteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NoteRequest")
	}

	note, err := api.svc.SetNote(ctx.Request().Context(), id, data.Note)
	if err != nil {
		return errors.Wrap(err, "setting student note")
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *studentApi) report(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	rep, err := api.reportSvc.StudentReport(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "building student report")
	}
	return ctx.JSON(http.StatusOK, rep)
}

// importSheet creates the students listed in an uploaded .xlsx file (form field `file`)
// in the class given by the `classId` form value.
func (api *studentApi) importSheet(ctx echo.Context) error {
	req := ctx.Request()
	req.Body = http.MaxBytesReader(ctx.Response(), req.Body, api.maxUploadSize)

	classID, err := strconv.Atoi(ctx.FormValue("classId"))
	if err != nil || classID <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "classId", Error: "a valid class is required"})
	}
	if _, err := api.classSvc.GetByID(req.Context(), classID); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "classId", Error: err.Error()})
		}
		return errors.Wrap(err, "finding class by ID")
	}

	fh, err := ctx.FormFile(importFileField)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: importFileField, Error: "a spreadsheet file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	rows, err := spreadsheet.ReadRows(f)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: importFileField, Error: "could not read the spreadsheet"})
	}

	res, err := api.svc.Import(req.Context(), api.validate, api.translator, classID, rows)
	if err != nil {
		return errors.Wrap(err, "importing students")
	}
	return ctx.JSON(http.StatusCreated, res)
}

type NoteRequest struct {
	Note string `json:"note"`
}
