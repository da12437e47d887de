package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

// OnboardingService records the post-registration setup step.
type OnboardingService struct {
	users      ports.UserRepository
	onboarding ports.OnboardingRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewOnboardingService(users ports.UserRepository, onboarding ports.OnboardingRepository, log zerolog.Logger) *OnboardingService {
	return &OnboardingService{users: users, onboarding: onboarding, log: log, now: time.Now}
}

// Completed reports whether the user already has an onboarding record.
func (s *OnboardingService) Completed(ctx context.Context, userID string) (bool, error) {
	_, err := s.onboarding.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrOnboardingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Complete sets the chosen account type and writes the onboarding record.
// An existing record is left as is.
func (s *OnboardingService) Complete(ctx context.Context, userID, accountType string) error {
	if !domain.ValidAccountType(accountType) {
		return domain.ErrInvalidAccountType
	}

	done, err := s.Completed(ctx, userID)
	if err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	if done {
		return nil
	}

	if err := s.users.UpdateAccountType(ctx, userID, accountType); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}

	err = s.onboarding.Create(ctx, &domain.OnboardingStatus{
		UserID:      userID,
		AccountType: accountType,
		CompletedAt: s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("account_type", accountType).Msg("onboarding completed")
	return nil
}
