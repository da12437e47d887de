package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/account-portal/internal/core/domain"
)

const accountsCollection = "accounts"

type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type mongoAccount struct {
	Provider          string `bson:"provider"`
	ProviderAccountID string `bson:"providerAccountId"`
	UserID            string `bson:"userId"`
	CreatedAt         int64  `bson:"createdAt"`
}

func (r *AccountRepository) FindByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	var doc mongoAccount
	filter := bson.M{"provider": provider, "providerAccountId": providerAccountID}
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &domain.Account{
		Provider:          doc.Provider,
		ProviderAccountID: doc.ProviderAccountID,
		UserID:            doc.UserID,
		CreatedAt:         unixToTime(doc.CreatedAt),
	}, nil
}

func (r *AccountRepository) Link(ctx context.Context, account *domain.Account) error {
	_, err := r.coll.InsertOne(ctx, mongoAccount{
		Provider:          account.Provider,
		ProviderAccountID: account.ProviderAccountID,
		UserID:            account.UserID,
		CreatedAt:         account.CreatedAt.Unix(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}
