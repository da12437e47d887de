package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/account-portal/internal/core/domain"
)

const (
	audienceSession    = "session"
	audienceOnboarding = "onboarding"

	defaultSessionTTL    = 30 * 24 * time.Hour
	defaultOnboardingTTL = 15 * time.Minute
)

type sessionClaims struct {
	AccountType string `json:"accountType,omitempty"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies the stateless session token (HS256).
type SessionIssuer struct {
	secret        []byte
	ttl           time.Duration
	onboardingTTL time.Duration
	now           func() time.Time
}

func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionIssuer{
		secret:        []byte(secret),
		ttl:           ttl,
		onboardingTTL: defaultOnboardingTTL,
		now:           time.Now,
	}
}

// TTL is the lifetime of issued session tokens.
func (s *SessionIssuer) TTL() time.Duration {
	return s.ttl
}

// Issue stamps issue/expiry times on the token and signs it.
func (s *SessionIssuer) Issue(token domain.Token) (string, domain.Token, error) {
	if token.ID == "" {
		return "", token, errors.New("issue session: empty user id")
	}
	now := s.now().UTC().Truncate(time.Second)
	token.IssuedAt = now
	token.ExpiresAt = now.Add(s.ttl)

	signed, err := s.sign(token, audienceSession)
	if err != nil {
		return "", token, fmt.Errorf("issue session: %w", err)
	}
	return signed, token, nil
}

// Parse verifies a session token and returns its claims.
func (s *SessionIssuer) Parse(raw string) (domain.Token, error) {
	return s.parse(raw, audienceSession)
}

// IssuePending signs a short-lived token that only identifies a user who was
// diverted to onboarding. It never grants a session.
func (s *SessionIssuer) IssuePending(userID string) (string, error) {
	now := s.now().UTC().Truncate(time.Second)
	return s.sign(domain.Token{ID: userID, IssuedAt: now, ExpiresAt: now.Add(s.onboardingTTL)}, audienceOnboarding)
}

// ParsePending returns the user id carried by an onboarding token.
func (s *SessionIssuer) ParsePending(raw string) (string, error) {
	token, err := s.parse(raw, audienceOnboarding)
	if err != nil {
		return "", err
	}
	return token.ID, nil
}

func (s *SessionIssuer) sign(token domain.Token, audience string) (string, error) {
	claims := sessionClaims{
		AccountType: token.AccountType,
		Email:       token.Email,
		Name:        token.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   token.ID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(token.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAt),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *SessionIssuer) parse(raw, audience string) (domain.Token, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tkn.Valid {
		return domain.Token{}, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return domain.Token{}, domain.ErrUnauthenticated
	}

	token := domain.Token{
		ID:          claims.Subject,
		AccountType: claims.AccountType,
		Email:       claims.Email,
		Name:        claims.Name,
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return token, nil
}
