package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"wrapped unauthenticated", fmt.Errorf("parse: %w", domain.ErrUnauthenticated), http.StatusUnauthorized, "not authenticated"},
		{"access denied", domain.ErrAccessDenied, http.StatusForbidden, "access denied"},
		{"email not verified", domain.ErrEmailNotVerified, http.StatusForbidden, "email not verified"},
		{"user exists", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"ceremony expired", domain.ErrCeremonyNotFound, http.StatusBadRequest, "authentication ceremony expired"},
		{"provider unavailable", domain.ErrProviderUnavailable, http.StatusServiceUnavailable, "not configured"},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "short and stout"), http.StatusTeapot, "short and stout"},
		{"unexpected", errors.New("mongo exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.wantMsg) {
				t.Fatalf("expected %q in body, got %s", tc.wantMsg, rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "mongo exploded") {
				t.Fatalf("internal error leaked: %s", rec.Body.String())
			}
		})
	}
}
