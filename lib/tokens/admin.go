package tokens

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AdminTokenHeader carries ADMIN_TOKEN. Authorization is taken by the bearer token of
// the admin principal.
const AdminTokenHeader = "X-Admin-Token"

func AdminTokenMiddleware(token string) echo.MiddlewareFunc {
	if token == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + AdminTokenHeader,
		Validator: func(auth string, c echo.Context) (bool, error) {
			return auth == token, nil
		},
	})
}
