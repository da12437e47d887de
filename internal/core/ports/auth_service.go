package ports

import (
	"context"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// CredentialService authorizes email/password pairs and registers
// credential users.
type CredentialService interface {
	Authorize(ctx context.Context, email, password string) (*domain.Identity, error)
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
}

// OutcomeKind classifies the end of a sign-in attempt.
type OutcomeKind string

const (
	OutcomeGranted    OutcomeKind = "granted"
	OutcomeOnboarding OutcomeKind = "onboarding"
	OutcomeDenied     OutcomeKind = "denied"
)

// SignInOutcome tells the transport layer which cookie to set and where to
// send the browser next.
type SignInOutcome struct {
	Kind         OutcomeKind
	SessionToken string
	PendingToken string
	RedirectTo   string
	Session      *domain.Session
}

// SignInService completes a sign-in for an authorized identity and decodes
// existing sessions.
type SignInService interface {
	Complete(ctx context.Context, identity *domain.Identity, callbackURL string) (*SignInOutcome, error)
	CurrentSession(token string) (*domain.Session, error)
	PendingUserID(token string) (string, error)
	SignOut(ctx context.Context, token string)
	CallbackURL(raw string) string
}

// OnboardingService records onboarding completion.
type OnboardingService interface {
	Complete(ctx context.Context, userID, accountType string) error
	Completed(ctx context.Context, userID string) (bool, error)
}

// GoogleService drives the Google authorization code flow.
type GoogleService interface {
	Begin(ctx context.Context, callbackURL string) (string, error)
	Finish(ctx context.Context, state, code string) (*domain.Identity, string, error)
}

// PasskeyService drives WebAuthn ceremonies. Options and responses are the
// raw JSON exchanged with navigator.credentials.
type PasskeyService interface {
	BeginLogin(ctx context.Context) (sessionID string, optionsJSON []byte, err error)
	FinishLogin(ctx context.Context, sessionID string, responseJSON []byte) (*domain.Identity, error)
	BeginRegistration(ctx context.Context, userID string) (sessionID string, optionsJSON []byte, err error)
	FinishRegistration(ctx context.Context, userID, sessionID string, responseJSON []byte) (string, error)
}
