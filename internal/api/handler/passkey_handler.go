package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/api/metrics"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

type PasskeyHandler struct {
	passkeys ports.PasskeyService
	signin   ports.SignInService
	cookies  Cookies
}

func NewPasskeyHandler(passkeys ports.PasskeyService, signin ports.SignInService, cookies Cookies) *PasskeyHandler {
	return &PasskeyHandler{passkeys: passkeys, signin: signin, cookies: cookies}
}

type ceremonyOptionsResponse struct {
	SessionID string          `json:"sessionId"`
	Options   json.RawMessage `json:"options" swaggertype:"object"`
}

type ceremonyVerifyRequest struct {
	SessionID   string          `json:"sessionId" validate:"required"`
	Response    json.RawMessage `json:"response" validate:"required" swaggertype:"object"`
	CallbackURL string          `json:"callbackUrl"`
}

type registrationResponse struct {
	CredentialID string `json:"credentialId"`
	URL          string `json:"url"`
}

// LoginOptions starts a discoverable passkey login.
//
// @Summary      Passkey login options
// @Tags         passkey
// @Produce      json
// @Success      200  {object}  ceremonyOptionsResponse
// @Router       /auth/webauthn/authenticate/options [post]
func (h *PasskeyHandler) LoginOptions(c echo.Context) error {
	sessionID, options, err := h.passkeys.BeginLogin(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ceremonyOptionsResponse{SessionID: sessionID, Options: options})
}

// LoginVerify verifies the assertion and signs the user in.
//
// @Summary      Verify passkey login
// @Tags         passkey
// @Accept       json
// @Produce      json
// @Param        body  body      ceremonyVerifyRequest  true  "Ceremony id and assertion"
// @Success      200   {object}  signInResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/webauthn/authenticate/verify [post]
func (h *PasskeyHandler) LoginVerify(c echo.Context) error {
	var req ceremonyVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	identity, err := h.passkeys.FinishLogin(ctx, req.SessionID, req.Response)
	if err != nil {
		metrics.AuthorizationFailuresTotal.WithLabelValues(domain.ProviderPasskey).Inc()
		return err
	}

	outcome, err := h.signin.Complete(ctx, identity, req.CallbackURL)
	if err != nil {
		return err
	}
	return respondOutcome(c, h.cookies, outcome)
}

// RegisterOptions starts registering a passkey for the signed-in user.
//
// @Summary      Passkey registration options
// @Tags         passkey
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  ceremonyOptionsResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/webauthn/register/options [post]
func (h *PasskeyHandler) RegisterOptions(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	sessionID, options, err := h.passkeys.BeginRegistration(c.Request().Context(), session.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ceremonyOptionsResponse{SessionID: sessionID, Options: options})
}

// RegisterVerify stores the new passkey.
//
// @Summary      Verify passkey registration
// @Tags         passkey
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      ceremonyVerifyRequest  true  "Ceremony id and attestation"
// @Success      201   {object}  registrationResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/webauthn/register/verify [post]
func (h *PasskeyHandler) RegisterVerify(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req ceremonyVerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	credentialID, err := h.passkeys.FinishRegistration(c.Request().Context(), session.User.ID, req.SessionID, req.Response)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registrationResponse{
		CredentialID: credentialID,
		URL:          h.signin.CallbackURL(req.CallbackURL),
	})
}
