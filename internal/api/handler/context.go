package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// ctxSession returns the session injected by the session middleware and
// fails fast with 401 when it is missing or carries no user id.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session, _ := c.Get("session").(*domain.Session)
	if session == nil || session.User.ID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return session, nil
}
