package echoapi

import (
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
	"github.com/earmahsakyi/School-Management-System-sub002/core/payment"
	"github.com/earmahsakyi/School-Management-System-sub002/core/report"
)

type paymentApi struct {
	svc       payment.ServiceInterface
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerPaymentAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc payment.ServiceInterface,
	reportSvc *report.Service,
	validate *validator.Validate,
) {
	api := paymentApi{svc: svc, reportSvc: reportSvc, validate: validate}

	pg := g.Group("/payments", jwt, sectionMiddleware(core.SectionPayments))
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.POST("/receipts", api.receipts)

	// detail endpoints
	dg := pg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return svc.Get(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/receipt", api.receipt)
	dg.POST("/receipt/email", api.emailReceipt)
}

// Handlers

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *paymentApi) query(ctx echo.Context) error {
	filter := new(payment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []payment.Payment{})
	}

	payments, err := api.svc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving payment from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) update(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving payment from context")
	}

	var data payment.UpdatePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePayment")
	}
	if err := data.Validate(api.validate, p); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving payment from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *paymentApi) receipt(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving payment from context")
	}

	file, err := api.reportSvc.Receipt(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "generating receipt")
	}
	return sendPDF(ctx, file)
}

func (api *paymentApi) receipts(ctx echo.Context) error {
	var data payment.BatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	file, err := api.reportSvc.Receipts(ctx.Request().Context(), data.IDs)
	if err != nil {
		return errors.Wrap(err, "generating receipts")
	}
	return sendPDF(ctx, file)
}

func (api *paymentApi) emailReceipt(ctx echo.Context) error {
	p, ok := ctx.Get(contextObjectKey).(payment.Payment)
	if !ok {
		return errors.Wrap(errObjNotInCtx, "retrieving payment from context")
	}

	var data report.EmailRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EmailRequest")
	}
	data.Name = core.CleanString(data.Name)
	data.Email = core.CleanString(data.Email, true)
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	to := mail.Address{Name: data.Name, Address: data.Email}
	if err := api.reportSvc.EmailReceipt(ctx.Request().Context(), p.ID, to); err != nil {
		return errors.Wrap(err, "emailing receipt")
	}
	return ctx.NoContent(http.StatusAccepted)
}
