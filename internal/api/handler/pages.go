package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
	"github.com/99minutos/account-portal/internal/web"
)

// PageHandler serves the server-rendered pages.
type PageHandler struct {
	signin     ports.SignInService
	onboarding ports.OnboardingService
	cookies    Cookies
	log        zerolog.Logger
}

func NewPageHandler(signin ports.SignInService, onboarding ports.OnboardingService, cookies Cookies, log zerolog.Logger) *PageHandler {
	return &PageHandler{signin: signin, onboarding: onboarding, cookies: cookies, log: log}
}

type onboardingForm struct {
	AccountType string `form:"accountType"`
	CallbackURL string `form:"callbackUrl"`
}

// Login renders the sign-in page.
func (h *PageHandler) Login(c echo.Context) error {
	session, _ := c.Get("session").(*domain.Session)
	view := web.NewLoginView(h.signin.CallbackURL(c.QueryParam("callbackUrl")), session != nil, c.QueryParam("error"))
	return c.Render(http.StatusOK, web.PageLogin, view)
}

// Error renders the sign-in error page.
func (h *PageHandler) Error(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageError, web.NewErrorView(c.QueryParam("error")))
}

// Onboarding renders the onboarding form for a user diverted there by the
// sign-in gate.
func (h *PageHandler) Onboarding(c echo.Context) error {
	callbackURL := c.QueryParam("callbackUrl")
	if _, err := h.onboardingUser(c); err != nil {
		return c.Redirect(http.StatusSeeOther, loginURL(callbackURL))
	}
	return c.Render(http.StatusOK, web.PageOnboarding, web.NewOnboardingView(callbackURL, ""))
}

// CompleteOnboarding records the chosen account type and sends the user back
// to sign in, now past the gate.
func (h *PageHandler) CompleteOnboarding(c echo.Context) error {
	var form onboardingForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, web.PageOnboarding, web.NewOnboardingView("", "Invalid form submission."))
	}

	userID, err := h.onboardingUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, loginURL(form.CallbackURL))
	}

	if err := h.onboarding.Complete(c.Request().Context(), userID, form.AccountType); err != nil {
		if errors.Is(err, domain.ErrInvalidAccountType) {
			return c.Render(http.StatusBadRequest, web.PageOnboarding, web.NewOnboardingView(form.CallbackURL, "Choose a valid account type."))
		}
		return err
	}

	h.cookies.clear(c, PendingCookie)
	h.log.Info().Str("user_id", userID).Str("account_type", form.AccountType).Msg("onboarding completed")
	return c.Redirect(http.StatusSeeOther, loginURL(form.CallbackURL))
}

// Dashboard renders the signed-in landing page.
func (h *PageHandler) Dashboard(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, web.PageDashboard, web.DashboardView{Title: "Dashboard", Session: session})
}

// onboardingUser resolves the user from the pending cookie, falling back to
// an existing session.
func (h *PageHandler) onboardingUser(c echo.Context) (string, error) {
	if userID, err := h.signin.PendingUserID(cookieValue(c, PendingCookie)); err == nil {
		return userID, nil
	}
	if session, _ := c.Get("session").(*domain.Session); session != nil {
		return session.User.ID, nil
	}
	return "", domain.ErrUnauthenticated
}

func loginURL(callbackURL string) string {
	if callbackURL == "" {
		return domain.PathSignIn
	}
	return domain.PathSignIn + "?callbackUrl=" + url.QueryEscape(callbackURL)
}
