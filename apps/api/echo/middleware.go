package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

var contextObjectKey = "object"

// sectionMiddleware lets through requests whose access token unlocked section.
func sectionMiddleware(section string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Has(section) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// objectMiddleware loads the object named by the ":id" path param into the context.
func objectMiddleware(get func(ctx echo.Context, id string) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := get(ctx, ctx.Param("id"))
			if err != nil {
				if isNotFound(errors.Cause(err)) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "getting object")
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}
