package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/account-portal/internal/core/domain"
)

const onboardingCollection = "onboarding_statuses"

type OnboardingRepository struct {
	coll *mongo.Collection
}

func NewOnboardingRepository(db *mongo.Database) *OnboardingRepository {
	return &OnboardingRepository{coll: db.Collection(onboardingCollection)}
}

type mongoOnboarding struct {
	UserID      string `bson:"userId"`
	AccountType string `bson:"accountType,omitempty"`
	CompletedAt int64  `bson:"completedAt"`
}

func (r *OnboardingRepository) FindByUserID(ctx context.Context, userID string) (*domain.OnboardingStatus, error) {
	var doc mongoOnboarding
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOnboardingNotFound
		}
		return nil, fmt.Errorf("find onboarding status: %w", err)
	}
	return &domain.OnboardingStatus{
		UserID:      doc.UserID,
		AccountType: doc.AccountType,
		CompletedAt: unixToTime(doc.CompletedAt),
	}, nil
}

// Create inserts the onboarding marker. A concurrent duplicate is not an
// error: the row existing is all that matters.
func (r *OnboardingRepository) Create(ctx context.Context, status *domain.OnboardingStatus) error {
	_, err := r.coll.InsertOne(ctx, mongoOnboarding{
		UserID:      status.UserID,
		AccountType: status.AccountType,
		CompletedAt: status.CompletedAt.Unix(),
	})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert onboarding status: %w", err)
	}
	return nil
}
