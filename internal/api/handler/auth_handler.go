package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/api/metrics"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

type AuthHandler struct {
	credentials ports.CredentialService
	signin      ports.SignInService
	cookies     Cookies
}

func NewAuthHandler(credentials ports.CredentialService, signin ports.SignInService, cookies Cookies) *AuthHandler {
	return &AuthHandler{credentials: credentials, signin: signin, cookies: cookies}
}

type registerRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8"`
}

type credentialsRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"callbackUrl" form:"callbackUrl"`
}

type signInResponse struct {
	URL     string          `json:"url"`
	Session *domain.Session `json:"session,omitempty"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

// Register creates a credentials user.
//
// @Summary      Register a credentials user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Name, email and password"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.credentials.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Credentials signs in with email and password.
//
// @Summary      Sign in with credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Email, password and optional callback URL"
// @Success      200   {object}  signInResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/callback/credentials [post]
func (h *AuthHandler) Credentials(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	ctx := c.Request().Context()
	identity, err := h.credentials.Authorize(ctx, req.Email, req.Password)
	if err != nil {
		metrics.AuthorizationFailuresTotal.WithLabelValues(domain.ProviderCredentials).Inc()
		if isFormPost(c) {
			return c.Redirect(http.StatusSeeOther, domain.PathSignIn+"?error=CredentialsSignin")
		}
		return err
	}

	outcome, err := h.signin.Complete(ctx, identity, req.CallbackURL)
	if err != nil {
		return err
	}
	return respondOutcome(c, h.cookies, outcome)
}

// Session returns the current session, or an empty object when signed out.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.Session
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	session, _ := c.Get("session").(*domain.Session)
	if session == nil {
		return c.JSON(http.StatusOK, map[string]any{})
	}
	return c.JSON(http.StatusOK, session)
}

// SignOut clears the session cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  signInResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if raw := cookieValue(c, SessionCookie); raw != "" {
		h.signin.SignOut(c.Request().Context(), raw)
	}
	h.cookies.clear(c, SessionCookie)
	h.cookies.clear(c, PendingCookie)

	if isFormPost(c) {
		return c.Redirect(http.StatusSeeOther, domain.PathSignIn)
	}
	return c.JSON(http.StatusOK, signInResponse{URL: domain.PathSignIn})
}

// respondOutcome sets cookies for the outcome and answers with JSON, or with
// a redirect for plain form posts. A denied sign-in is a 403.
func respondOutcome(c echo.Context, cookies Cookies, outcome *ports.SignInOutcome) error {
	cookies.apply(c, outcome)

	if isFormPost(c) {
		return c.Redirect(http.StatusSeeOther, outcome.RedirectTo)
	}
	if outcome.Kind == ports.OutcomeDenied {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied", "url": outcome.RedirectTo})
	}
	return c.JSON(http.StatusOK, signInResponse{URL: outcome.RedirectTo, Session: outcome.Session})
}
