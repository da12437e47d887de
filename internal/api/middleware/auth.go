package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// SessionDecoder turns a raw session token into a session.
type SessionDecoder interface {
	CurrentSession(token string) (*domain.Session, error)
}

// Session decodes the session token from the named cookie or an
// Authorization bearer header and injects it into context. Requests without
// a valid token pass through unauthenticated; the Require* middlewares
// decide what that means for a route.
func Session(decoder SessionDecoder, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				if ck, err := c.Cookie(cookieName); err == nil {
					raw = ck.Value
				}
			}
			if raw == "" {
				return next(c)
			}

			session, err := decoder.CurrentSession(raw)
			if err != nil {
				return next(c)
			}

			c.Set("session", session)
			c.Set("user_id", session.User.ID)
			c.Set("account_type", session.User.AccountType)

			return next(c)
		}
	}
}

// RequireSession rejects API requests that carry no valid session.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !hasSession(c) {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return next(c)
		}
	}
}

// RequirePageSession sends browsers without a session to the sign-in page,
// carrying the requested URI as callbackUrl.
func RequirePageSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !hasSession(c) {
				target := domain.PathSignIn + "?callbackUrl=" + url.QueryEscape(c.Request().RequestURI)
				return c.Redirect(http.StatusSeeOther, target)
			}
			return next(c)
		}
	}
}

func hasSession(c echo.Context) bool {
	session, _ := c.Get("session").(*domain.Session)
	return session != nil && session.User.ID != ""
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
