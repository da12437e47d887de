package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

// JWT copies the freshly authorized identity onto the outgoing token. When
// identity is nil (token refresh) the token is returned unchanged.
func JWT(token domain.Token, identity *domain.Identity) domain.Token {
	if identity == nil {
		return token
	}
	token.ID = identity.ID
	token.AccountType = identity.AccountType
	token.Email = identity.Email
	token.Name = identity.Name
	return token
}

// Session copies the token's id and account type onto the session user.
// Empty token fields leave the session untouched.
func Session(session domain.Session, token domain.Token) domain.Session {
	if token.ID != "" {
		session.User.ID = token.ID
	}
	if token.AccountType != "" {
		session.User.AccountType = token.AccountType
	}
	if session.User.Email == "" {
		session.User.Email = token.Email
	}
	if session.User.Name == "" {
		session.User.Name = token.Name
	}
	if session.Expires.IsZero() {
		session.Expires = token.ExpiresAt
	}
	return session
}

// Redirect normalizes a post sign-in target. Same-origin absolute URLs pass
// through, relative paths are resolved against baseURL, everything else
// falls back to baseURL.
func Redirect(target, baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	target = strings.TrimSpace(target)
	if target == "" {
		return baseURL
	}

	// "//host" and "/\host" are protocol-relative in browsers.
	if strings.HasPrefix(target, "/") {
		if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
			return baseURL
		}
		return baseURL + target
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	u, err := url.Parse(target)
	if err != nil {
		return baseURL
	}
	if strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host) {
		return target
	}
	return baseURL
}

// SignInGate decides whether an authorized identity may finish signing in.
type SignInGate struct {
	onboarding ports.OnboardingRepository
}

func NewSignInGate(onboarding ports.OnboardingRepository) *SignInGate {
	return &SignInGate{onboarding: onboarding}
}

// SignIn refuses a nil identity and diverts users without an onboarding
// record to the onboarding page.
func (g *SignInGate) SignIn(ctx context.Context, identity *domain.Identity) (domain.SignInDecision, error) {
	if identity == nil || identity.ID == "" {
		return domain.SignInDecision{}, nil
	}

	_, err := g.onboarding.FindByUserID(ctx, identity.ID)
	if errors.Is(err, domain.ErrOnboardingNotFound) {
		return domain.SignInDecision{RedirectTo: domain.PathOnboarding}, nil
	}
	if err != nil {
		return domain.SignInDecision{}, fmt.Errorf("sign-in gate: %w", err)
	}
	return domain.SignInDecision{Allowed: true}, nil
}
