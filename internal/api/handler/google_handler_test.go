package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
)

type stubGoogleService struct {
	beginErr  error
	finishErr error
	callback  string
}

func (s *stubGoogleService) Begin(_ context.Context, callbackURL string) (string, error) {
	if s.beginErr != nil {
		return "", s.beginErr
	}
	s.callback = callbackURL
	return "https://accounts.google.com/o/oauth2/auth?state=abc", nil
}

func (s *stubGoogleService) Finish(_ context.Context, state, code string) (*domain.Identity, string, error) {
	if s.finishErr != nil {
		return nil, "", s.finishErr
	}
	return &domain.Identity{ID: "u1", Provider: domain.ProviderGoogle}, s.callback, nil
}

func TestGoogleHandler_Begin(t *testing.T) {
	e := newTestEcho()
	google := &stubGoogleService{}
	h := NewGoogleHandler(google, &stubSignInService{}, Cookies{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/auth/signin/google?callbackUrl=%2Fsettings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Begin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if google.callback != "/settings" {
		t.Fatalf("callback not forwarded: %q", google.callback)
	}
}

func TestGoogleHandler_Begin_NotConfigured(t *testing.T) {
	e := newTestEcho()
	h := NewGoogleHandler(&stubGoogleService{beginErr: domain.ErrProviderUnavailable}, &stubSignInService{}, Cookies{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/auth/signin/google", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Begin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get("Location"); loc != "/auth/error?error=Configuration" {
		t.Fatalf("unexpected location: %s", loc)
	}
}

func TestGoogleHandler_Callback_Granted(t *testing.T) {
	e := newTestEcho()
	google := &stubGoogleService{callback: "/settings"}
	h := NewGoogleHandler(google, &stubSignInService{completeFn: grantedOutcome}, Cookies{SessionTTL: time.Hour}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback/google?state=abc&code=xyz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Callback(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if loc := rec.Header().Get("Location"); loc != "https://app.example.com/settings" {
		t.Fatalf("unexpected location: %s", loc)
	}
	if ck := findCookie(rec, SessionCookie); ck == nil || ck.Value != "signed-token" {
		t.Fatalf("expected session cookie, got %+v", ck)
	}
}

func TestGoogleHandler_Callback_Failures(t *testing.T) {
	cases := []struct {
		name string
		url  string
		err  error
		want string
	}{
		{"user cancelled", "/auth/callback/google?error=access_denied", nil, "/auth/login?error=google"},
		{"unverified email of existing user", "/auth/callback/google?state=a&code=b", domain.ErrAccessDenied, "/auth/error?error=OAuthAccountNotLinked"},
		{"unverified email of new user", "/auth/callback/google?state=a&code=b", domain.ErrEmailNotVerified, "/auth/error?error=AccessDenied"},
		{"stale state", "/auth/callback/google?state=a&code=b", domain.ErrCeremonyNotFound, "/auth/error?error=Verification"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			h := NewGoogleHandler(&stubGoogleService{finishErr: tc.err}, &stubSignInService{}, Cookies{}, zerolog.Nop())

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := h.Callback(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if loc := rec.Header().Get("Location"); loc != tc.want {
				t.Fatalf("location = %s, want %s", loc, tc.want)
			}
		})
	}
}
