package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

// ExternalProfile is what an identity provider asserts about a user.
type ExternalProfile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	EmailVerified     bool
	Name              string
}

// AccountLinker maps external profiles onto users, creating federated-only
// users (no password) on first sign-in.
type AccountLinker struct {
	users    ports.UserRepository
	accounts ports.AccountRepository
	events   ports.EventPublisher
	log      zerolog.Logger
	now      func() time.Time
}

func NewAccountLinker(users ports.UserRepository, accounts ports.AccountRepository, events ports.EventPublisher, log zerolog.Logger) *AccountLinker {
	return &AccountLinker{users: users, accounts: accounts, events: events, log: log, now: time.Now}
}

// Resolve returns the user behind profile. An unverified email that already
// belongs to another user is refused with domain.ErrAccessDenied rather than
// silently linked. An unverified email is never used to create a user
// (domain.ErrEmailNotVerified), so it cannot squat on the real owner's address.
func (l *AccountLinker) Resolve(ctx context.Context, profile ExternalProfile) (*domain.User, error) {
	if profile.ProviderAccountID == "" {
		return nil, fmt.Errorf("resolve account: missing provider account id")
	}

	account, err := l.accounts.FindByProvider(ctx, profile.Provider, profile.ProviderAccountID)
	switch {
	case err == nil:
		return l.users.FindByID(ctx, account.UserID)
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, domain.ErrAccessDenied
	}

	existing, err := l.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !profile.EmailVerified {
			return nil, domain.ErrAccessDenied
		}
		if err := l.link(ctx, profile, existing.ID); err != nil {
			return nil, err
		}
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	if !profile.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	now := l.now().UTC()
	created, err := l.users.Create(ctx, &domain.User{
		Email:       email,
		Name:        strings.TrimSpace(profile.Name),
		AccountType: domain.DefaultAccountType,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve account: %w", err)
	}
	publish(l.events, domain.EventCreateUser, created.ID, profile.Provider, now)

	if err := l.link(ctx, profile, created.ID); err != nil {
		return nil, err
	}
	return created, nil
}

func (l *AccountLinker) link(ctx context.Context, profile ExternalProfile, userID string) error {
	now := l.now().UTC()
	err := l.accounts.Link(ctx, &domain.Account{
		Provider:          profile.Provider,
		ProviderAccountID: profile.ProviderAccountID,
		UserID:            userID,
		CreatedAt:         now,
	})
	if err != nil {
		return fmt.Errorf("link account: %w", err)
	}
	publish(l.events, domain.EventLinkAccount, userID, profile.Provider, now)
	l.log.Info().Str("user_id", userID).Str("provider", profile.Provider).Msg("account linked")
	return nil
}
