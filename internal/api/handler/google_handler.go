package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/api/metrics"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

type GoogleHandler struct {
	google  ports.GoogleService
	signin  ports.SignInService
	cookies Cookies
	log     zerolog.Logger
}

func NewGoogleHandler(google ports.GoogleService, signin ports.SignInService, cookies Cookies, log zerolog.Logger) *GoogleHandler {
	return &GoogleHandler{google: google, signin: signin, cookies: cookies, log: log}
}

// Begin redirects the browser to Google's consent screen.
//
// @Summary      Start Google sign-in
// @Tags         auth
// @Param        callbackUrl  query  string  false  "Post sign-in target"
// @Success      302
// @Router       /auth/signin/google [get]
func (h *GoogleHandler) Begin(c echo.Context) error {
	target, err := h.google.Begin(c.Request().Context(), c.QueryParam("callbackUrl"))
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return c.Redirect(http.StatusFound, domain.PathError+"?error=Configuration")
		}
		return err
	}
	return c.Redirect(http.StatusFound, target)
}

// Callback finishes the authorization code flow.
//
// @Summary      Google OAuth callback
// @Tags         auth
// @Param        state  query  string  true  "OAuth state"
// @Param        code   query  string  true  "Authorization code"
// @Success      302
// @Router       /auth/callback/google [get]
func (h *GoogleHandler) Callback(c echo.Context) error {
	if reason := c.QueryParam("error"); reason != "" {
		h.log.Info().Str("reason", reason).Msg("google sign-in cancelled")
		return c.Redirect(http.StatusFound, domain.PathSignIn+"?error=google")
	}

	identity, callbackURL, err := h.google.Finish(c.Request().Context(), c.QueryParam("state"), c.QueryParam("code"))
	if err != nil {
		metrics.AuthorizationFailuresTotal.WithLabelValues(domain.ProviderGoogle).Inc()
		switch {
		case errors.Is(err, domain.ErrEmailNotVerified):
			return c.Redirect(http.StatusFound, domain.PathError+"?error=AccessDenied")
		case errors.Is(err, domain.ErrAccessDenied):
			return c.Redirect(http.StatusFound, domain.PathError+"?error=OAuthAccountNotLinked")
		case errors.Is(err, domain.ErrCeremonyNotFound):
			return c.Redirect(http.StatusFound, domain.PathError+"?error=Verification")
		}
		h.log.Error().Err(err).Msg("google sign-in failed")
		return c.Redirect(http.StatusFound, domain.PathSignIn+"?error=google")
	}

	outcome, err := h.signin.Complete(c.Request().Context(), identity, callbackURL)
	if err != nil {
		return err
	}
	h.cookies.apply(c, outcome)
	return c.Redirect(http.StatusFound, outcome.RedirectTo)
}
