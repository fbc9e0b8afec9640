package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/abdel28fr/ecole-pwa/core/payment"
)

type paymentApi struct {
	svc      *payment.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := paymentApi{
		svc:      deps.PaymentSvc,
		validate: deps.Validate,
	}
	canWrite := permMiddleware(canManageMoney)

	pg := g.Group("/payments", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, canWrite)
	pg.POST("/bulk", api.createForClass, canWrite)
	pg.GET("/stats", api.stats)
	pg.GET("/unpaid", api.queryUnpaid)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update, canWrite)
	pg.DELETE("/:id", api.destroy, canWrite)
	pg.POST("/:id/pay", api.markPaid, canWrite)
	pg.POST("/:id/notice", api.sendNotice, canWrite)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}
	filter.Clean()

	payments, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) queryUnpaid(ctx echo.Context) error {
	payments, err := api.svc.GetUnpaid(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying unpaid payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) createForClass(ctx echo.Context) error {
	var data payment.ClassPayments
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassPayments")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.CreateForClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class payments")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paymentApi) markPaid(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.MarkPaid(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "marking payment as paid")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) sendNotice(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	res, err := api.svc.SendNotice(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "sending payment notice")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *paymentApi) stats(ctx echo.Context) error {
	var query MonthQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to MonthQuery")
	}
	if err := query.Validate(api.validate, time.Now()); err != nil {
		return err
	}

	stats, err := api.svc.MonthStats(ctx.Request().Context(), query.Month, query.Year)
	if err != nil {
		return errors.Wrap(err, "computing payment stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// MonthQuery selects a month; the current month by default.
type MonthQuery struct {
	Month int `json:"month" query:"month" validate:"min=1,max=12"`
	Year  int `json:"year" query:"year" validate:"min=2000,max=2100"`
}

func (mq *MonthQuery) Validate(validate *validator.Validate, now time.Time) error {
	if mq.Month == 0 {
		mq.Month = int(now.Month())
	}
	if mq.Year == 0 {
		mq.Year = now.Year()
	}
	return validate.Struct(mq)
}
