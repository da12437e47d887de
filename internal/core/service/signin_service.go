package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/api/metrics"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

// SignInService runs the lifecycle hooks in the order the sign-in flow
// needs them: gate, token, redirect.
type SignInService struct {
	gate    *SignInGate
	issuer  *SessionIssuer
	events  ports.EventPublisher
	baseURL string
	log     zerolog.Logger
	now     func() time.Time
}

func NewSignInService(gate *SignInGate, issuer *SessionIssuer, events ports.EventPublisher, baseURL string, log zerolog.Logger) *SignInService {
	return &SignInService{gate: gate, issuer: issuer, events: events, baseURL: baseURL, log: log, now: time.Now}
}

// Complete finishes a sign-in for an authorized identity. callbackURL is the
// requested post sign-in target; an empty value means the dashboard.
func (s *SignInService) Complete(ctx context.Context, identity *domain.Identity, callbackURL string) (*ports.SignInOutcome, error) {
	provider := "unknown"
	if identity != nil && identity.Provider != "" {
		provider = identity.Provider
	}

	decision, err := s.gate.SignIn(ctx, identity)
	if err != nil {
		metrics.SignInTotal.WithLabelValues(provider, "error").Inc()
		return nil, err
	}

	if callbackURL == "" {
		callbackURL = domain.PathDashboard
	}

	if !decision.Allowed {
		if decision.RedirectTo == "" {
			metrics.SignInTotal.WithLabelValues(provider, string(ports.OutcomeDenied)).Inc()
			return &ports.SignInOutcome{
				Kind:       ports.OutcomeDenied,
				RedirectTo: s.errorURL("AccessDenied"),
			}, nil
		}

		pending, err := s.issuer.IssuePending(identity.ID)
		if err != nil {
			return nil, err
		}
		metrics.SignInTotal.WithLabelValues(provider, string(ports.OutcomeOnboarding)).Inc()
		s.log.Info().Str("user_id", identity.ID).Msg("sign-in diverted to onboarding")
		return &ports.SignInOutcome{
			Kind:         ports.OutcomeOnboarding,
			PendingToken: pending,
			RedirectTo:   Redirect(decision.RedirectTo+"?callbackUrl="+url.QueryEscape(callbackURL), s.baseURL),
		}, nil
	}

	signed, token, err := s.issuer.Issue(JWT(domain.Token{}, identity))
	if err != nil {
		return nil, err
	}
	session := Session(domain.Session{}, token)

	publish(s.events, domain.EventSignIn, identity.ID, provider, token.IssuedAt)
	metrics.SignInTotal.WithLabelValues(provider, string(ports.OutcomeGranted)).Inc()

	return &ports.SignInOutcome{
		Kind:         ports.OutcomeGranted,
		SessionToken: signed,
		RedirectTo:   s.CallbackURL(callbackURL),
		Session:      &session,
	}, nil
}

// CurrentSession decodes a session token and projects it for the
// presentation layer.
func (s *SignInService) CurrentSession(raw string) (*domain.Session, error) {
	if raw == "" {
		return nil, domain.ErrUnauthenticated
	}
	token, err := s.issuer.Parse(raw)
	if err != nil {
		return nil, err
	}
	session := Session(domain.Session{}, token)
	return &session, nil
}

// PendingUserID resolves the user behind an onboarding token.
func (s *SignInService) PendingUserID(raw string) (string, error) {
	if raw == "" {
		return "", domain.ErrUnauthenticated
	}
	return s.issuer.ParsePending(raw)
}

// SignOut emits the sign-out event. Tokens are stateless, so the transport
// layer clearing the cookie is the actual sign-out.
func (s *SignInService) SignOut(ctx context.Context, raw string) {
	token, err := s.issuer.Parse(raw)
	if err != nil {
		return
	}
	publish(s.events, domain.EventSignOut, token.ID, "", s.now().UTC())
}

// CallbackURL resolves a requested post sign-in target against the base URL.
// Empty means the dashboard; foreign origins collapse to the base URL.
func (s *SignInService) CallbackURL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		raw = domain.PathDashboard
	}
	return Redirect(raw, s.baseURL)
}

func (s *SignInService) errorURL(code string) string {
	return Redirect(domain.PathError+"?error="+url.QueryEscape(code), s.baseURL)
}

func publish(events ports.EventPublisher, kind domain.AuthEventKind, userID, provider string, at time.Time) {
	if events == nil {
		return
	}
	events.Publish(domain.AuthEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		Provider:   provider,
		OccurredAt: at.UTC(),
	})
}
