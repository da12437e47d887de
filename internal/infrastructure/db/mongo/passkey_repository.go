package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/account-portal/internal/core/domain"
)

const authenticatorsCollection = "authenticators"

type PasskeyRepository struct {
	coll *mongo.Collection
}

func NewPasskeyRepository(db *mongo.Database) *PasskeyRepository {
	return &PasskeyRepository{coll: db.Collection(authenticatorsCollection)}
}

type mongoAuthenticator struct {
	CredentialID   string `bson:"credentialId"`
	UserID         string `bson:"userId"`
	CredentialJSON string `bson:"credential"`
	CreatedAt      int64  `bson:"createdAt"`
	UpdatedAt      int64  `bson:"updatedAt"`
	LastUsedAt     int64  `bson:"lastUsedAt,omitempty"`
}

func (r *PasskeyRepository) ListByUser(ctx context.Context, userID string) ([]domain.PasskeyCredential, error) {
	cur, err := r.coll.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list authenticators: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAuthenticator
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode authenticators: %w", err)
	}
	out := make([]domain.PasskeyCredential, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *PasskeyRepository) Get(ctx context.Context, credentialID string) (*domain.PasskeyCredential, error) {
	var doc mongoAuthenticator
	if err := r.coll.FindOne(ctx, bson.M{"credentialId": credentialID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find authenticator: %w", err)
	}
	c := doc.toDomain()
	return &c, nil
}

// Put upserts a credential by id.
func (r *PasskeyRepository) Put(ctx context.Context, c domain.PasskeyCredential) error {
	doc := mongoAuthenticator{
		CredentialID:   c.CredentialID,
		UserID:         c.UserID,
		CredentialJSON: c.CredentialJSON,
		CreatedAt:      c.CreatedAt.Unix(),
		UpdatedAt:      c.UpdatedAt.Unix(),
	}
	if c.LastUsedAt != nil {
		doc.LastUsedAt = c.LastUsedAt.Unix()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"credentialId": c.CredentialID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert authenticator: %w", err)
	}
	return nil
}

func (d *mongoAuthenticator) toDomain() domain.PasskeyCredential {
	c := domain.PasskeyCredential{
		CredentialID:   d.CredentialID,
		UserID:         d.UserID,
		CredentialJSON: d.CredentialJSON,
		CreatedAt:      unixToTime(d.CreatedAt),
		UpdatedAt:      unixToTime(d.UpdatedAt),
	}
	if d.LastUsedAt != 0 {
		t := time.Unix(d.LastUsedAt, 0).UTC()
		c.LastUsedAt = &t
	}
	return c
}
