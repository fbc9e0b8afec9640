package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core"
	"github.com/abdel28fr/ecole-pwa/core/finance"
	"github.com/abdel28fr/ecole-pwa/services/spreadsheet"
)

const transactionsSheet = "Transactions"

type financeApi struct {
	svc      *finance.Service
	validate *validator.Validate
}

func registerFinanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := financeApi{
		svc:      deps.FinanceSvc,
		validate: deps.Validate,
	}
	canWrite := permMiddleware(canManageMoney)

	fg := g.Group("/finance", jwt)

	cg := fg.Group("/categories")
	cg.GET("", api.queryCategories)
	cg.POST("", api.createCategory, canWrite)
	cg.GET("/:id", api.retrieveCategory)
	cg.PUT("/:id", api.updateCategory, canWrite)
	cg.DELETE("/:id", api.destroyCategory, canWrite)

	tg := fg.Group("/transactions")
	tg.GET("", api.queryTransactions)
	tg.POST("", api.createTransaction, canWrite)
	tg.GET("/export", api.exportTransactions)
	tg.GET("/:id", api.retrieveTransaction)
	tg.PUT("/:id", api.updateTransaction, canWrite)
	tg.DELETE("/:id", api.destroyTransaction, canWrite)

	sg := fg.Group("/stats")
	sg.GET("", api.totals)
	sg.GET("/monthly", api.monthlyStats)
	sg.GET("/categories", api.categoryStats)
}

// Categories

func (api *financeApi) queryCategories(ctx echo.Context) error {
	var query CategoryQuery
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []finance.Category{})
	}

	var cats []finance.Category
	var err error
	if typ := core.CleanString(query.Type, true /* lower */); typ != "" {
		cats, err = api.svc.GetCategoriesByType(ctx.Request().Context(), typ)
	} else {
		cats, err = api.svc.QueryAllCategories(ctx.Request().Context())
	}
	if err != nil {
		return errors.Wrap(err, "querying categories")
	}
	if cats == nil {
		cats = []finance.Category{}
	}
	return ctx.JSON(http.StatusOK, cats)
}

func (api *financeApi) createCategory(ctx echo.Context) error {
	var data finance.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.CreateCategory(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating category")
	}
	return ctx.JSON(http.StatusCreated, cat)
}

func (api *financeApi) retrieveCategory(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	cat, err := api.svc.GetCategoryByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding category by ID")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *financeApi) updateCategory(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data finance.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cat, err := api.svc.UpdateCategory(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating category")
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *financeApi) destroyCategory(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCategory(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting category")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Transactions

func (api *financeApi) bindFilter(ctx echo.Context) (finance.QueryFilter, error) {
	var filter finance.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return filter, errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	if err := validatePeriod(api.validate, filter.From, filter.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func (api *financeApi) queryTransactions(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	txs, err := api.svc.FilterTransactions(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	if txs == nil {
		txs = []finance.Transaction{}
	}
	return ctx.JSON(http.StatusOK, txs)
}

func (api *financeApi) exportTransactions(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	header, rows, err := api.svc.ExportTable(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building transactions table")
	}

	var buf bytes.Buffer
	if err := spreadsheet.Write(&buf, transactionsSheet, header, rows); err != nil {
		return errors.Wrap(err, "writing transactions")
	}
	filename := fmt.Sprintf("transactions-%s.xlsx", core.Today(time.Now()))
	return attachment(ctx, filename, spreadsheet.ContentType, buf.Bytes())
}

func (api *financeApi) createTransaction(ctx echo.Context) error {
	var data finance.NewTransaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTransaction")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tx, err := api.svc.CreateTransaction(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating transaction")
	}
	return ctx.JSON(http.StatusCreated, tx)
}

func (api *financeApi) retrieveTransaction(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	tx, err := api.svc.GetTransactionByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding transaction by ID")
	}
	return ctx.JSON(http.StatusOK, tx)
}

func (api *financeApi) updateTransaction(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data finance.UpdateTransaction
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTransaction")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tx, err := api.svc.UpdateTransaction(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating transaction")
	}
	return ctx.JSON(http.StatusOK, tx)
}

func (api *financeApi) destroyTransaction(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTransaction(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting transaction")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Stats

func (api *financeApi) totals(ctx echo.Context) error {
	var query PeriodQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to PeriodQuery")
	}
	if err := validatePeriod(api.validate, query.From, query.To); err != nil {
		return err
	}

	totals, err := api.svc.Totals(ctx.Request().Context(), query.From, query.To)
	if err != nil {
		return errors.Wrap(err, "computing finance totals")
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *financeApi) monthlyStats(ctx echo.Context) error {
	var query YearQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to YearQuery")
	}
	if err := query.Validate(api.validate, time.Now()); err != nil {
		return err
	}

	stats, err := api.svc.MonthlyStats(ctx.Request().Context(), query.Year)
	if err != nil {
		return errors.Wrap(err, "computing monthly stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *financeApi) categoryStats(ctx echo.Context) error {
	var query PeriodQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to PeriodQuery")
	}
	if err := validatePeriod(api.validate, query.From, query.To); err != nil {
		return err
	}

	stats, err := api.svc.CategoryStats(ctx.Request().Context(), query.From, query.To)
	if err != nil {
		return errors.Wrap(err, "computing category stats")
	}
	if stats == nil {
		stats = []finance.CategoryStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

type (
	CategoryQuery struct {
		Type string `query:"type"`
	}

	// PeriodQuery selects an inclusive date range; empty bounds are open.
	PeriodQuery struct {
		From string `query:"from"`
		To   string `query:"to"`
	}

	// YearQuery selects a year; the current year by default.
	YearQuery struct {
		Year int `json:"year" query:"year" validate:"min=2000,max=2100"`
	}
)

func (yq *YearQuery) Validate(validate *validator.Validate, now time.Time) error {
	if yq.Year == 0 {
		yq.Year = now.Year()
	}
	return validate.Struct(yq)
}

// validatePeriod checks the bounds of a date range.
func validatePeriod(validate *validator.Validate, from, to string) error {
	var flds []core.FieldError
	if from != "" && validate.Var(from, "isodate") != nil {
		flds = append(flds, core.FieldError{Field: "from", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	if to != "" && validate.Var(to, "isodate") != nil {
		flds = append(flds, core.FieldError{Field: "to", Error: "must be a date formatted as YYYY-MM-DD"})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	if from != "" && to != "" && from > to {
		return core.NewValidationError(nil, core.FieldError{Field: "to", Error: "must not be before from"})
	}
	return nil
}
