package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/core/ports"
)

const (
	SessionCookie = "session-token"
	PendingCookie = "onboarding-token"

	pendingCookieTTL = 15 * time.Minute
)

// Cookies writes the session and onboarding cookies.
type Cookies struct {
	Secure     bool
	SessionTTL time.Duration
}

func (k Cookies) set(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (k Cookies) clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   k.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// apply sets the cookies an outcome calls for.
func (k Cookies) apply(c echo.Context, outcome *ports.SignInOutcome) {
	switch outcome.Kind {
	case ports.OutcomeGranted:
		k.set(c, SessionCookie, outcome.SessionToken, k.SessionTTL)
		k.clear(c, PendingCookie)
	case ports.OutcomeOnboarding:
		k.set(c, PendingCookie, outcome.PendingToken, pendingCookieTTL)
	}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// isFormPost reports whether the request came from a plain HTML form, in
// which case handlers answer with a redirect instead of JSON.
func isFormPost(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm)
}
