package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
)

type accessApi struct {
	svc      *access.Service
	validate *validator.Validate
}

func registerAccessAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *access.Service, validate *validator.Validate) {
	api := accessApi{svc: svc, validate: validate}

	ag := g.Group("/access")
	ag.POST("", api.unlock)
	ag.GET("", api.current, jwt)
}

func newAccessResponse(token string, claims *access.Claims) access.Response {
	return access.Response{
		Token:     token,
		Sections:  claims.Sections,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}
}

// unlock exchanges a section passcode for an access token. A still valid token sent along keeps its sections.
func (api *accessApi) unlock(ctx echo.Context) error {
	var data access.Request
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to access.Request")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := api.svc.Grant(data, bearerClaims(ctx, api.svc.SigningKey()))
	if err != nil {
		return err
	}
	token, err := api.svc.Token(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, newAccessResponse(token, claims))
}

func (api *accessApi) current(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	return ctx.JSON(http.StatusOK, newAccessResponse("", claims))
}
