package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrOnboardingNotFound  = errors.New("onboarding status not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCredentialNotFound  = errors.New("passkey credential not found")
	ErrCeremonyNotFound    = errors.New("authentication ceremony not found or expired")
	ErrAccessDenied        = errors.New("access denied")
	ErrEmailNotVerified    = errors.New("email not verified by identity provider")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrProviderUnavailable = errors.New("identity provider not configured")
)
