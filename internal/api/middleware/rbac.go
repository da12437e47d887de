package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AccountType restricts a route to sessions whose account type is one of
// allowedTypes. Must run after Session.
func AccountType(allowedTypes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountType, _ := c.Get("account_type").(string)
			if _, ok := allowed[accountType]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
