package echoapi

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/earmahsakyi/School-Management-System-sub002/core/access"
)

var contextTokenKey = "accessToken"

func newJWTConfig(signingKey []byte) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    signingKey,
		SigningMethod: access.SigningMethod.Alg(),
		ContextKey:    contextTokenKey,
		Claims:        new(access.Claims),
	}
}

func getContextClaims(ctx echo.Context) (*access.Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*access.Claims); ok {
			return claims, nil
		}
	}
	return nil, errUnauthorized
}

// contextClaims is getContextClaims for logging: nil when the request carries no valid token.
func contextClaims(ctx echo.Context) *access.Claims {
	claims, _ := getContextClaims(ctx)
	return claims
}

// bearerClaims parses the optional bearer token of a request that does not go through the JWT middleware.
// Missing or invalid tokens yield nil.
func bearerClaims(ctx echo.Context, signingKey []byte) *access.Claims {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, middleware.DefaultJWTConfig.AuthScheme+" ") {
		return nil
	}
	claims := new(access.Claims)
	token, err := jwt.ParseWithClaims(auth[len(middleware.DefaultJWTConfig.AuthScheme)+1:], claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != access.SigningMethod.Alg() {
				return nil, errUnauthorized
			}
			return signingKey, nil
		})
	if err != nil || !token.Valid {
		return nil
	}
	return claims
}
