package ports

import (
	"context"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// UserRepository is the persistence contract for users. Lookups return
// domain.ErrUserNotFound when no row matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateAccountType(ctx context.Context, id, accountType string) error
}

// OnboardingRepository stores onboarding markers keyed by user id.
type OnboardingRepository interface {
	// FindByUserID returns domain.ErrOnboardingNotFound when the user has not
	// completed onboarding.
	FindByUserID(ctx context.Context, userID string) (*domain.OnboardingStatus, error)
	Create(ctx context.Context, status *domain.OnboardingStatus) error
}

// AccountRepository stores links between users and external providers.
type AccountRepository interface {
	FindByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)
	Link(ctx context.Context, account *domain.Account) error
}

// PasskeyRepository stores WebAuthn credentials.
type PasskeyRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.PasskeyCredential, error)
	Get(ctx context.Context, credentialID string) (*domain.PasskeyCredential, error)
	Put(ctx context.Context, credential domain.PasskeyCredential) error
}
