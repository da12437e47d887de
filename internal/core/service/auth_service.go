package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

// AuthService implements the credentials provider: email/password
// authorization and registration of password users.
type AuthService struct {
	repo   ports.UserRepository
	events ports.EventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(repo ports.UserRepository, events ports.EventPublisher, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, events: events, log: log, now: time.Now}
}

// Authorize checks an email/password pair. Every failure mode yields
// domain.ErrInvalidCredentials so callers cannot tell which field was wrong.
func (s *AuthService) Authorize(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authorize: %w", err)
	}

	// Federated-only accounts have no password to compare against.
	if !user.HasPassword() {
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return user.Identity(domain.ProviderCredentials), nil
}

// Register creates a password user with the default account type.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		AccountType:  domain.DefaultAccountType,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	publish(s.events, domain.EventCreateUser, created.ID, domain.ProviderCredentials, now)
	s.log.Info().Str("user_id", created.ID).Msg("credentials user registered")
	return created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
