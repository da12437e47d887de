package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoUser_FederatedUserHasNoPasswordField(t *testing.T) {
	raw, err := bson.Marshal(mongoUser{Email: "g@example.com", AccountType: "personal"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := doc["password"]; ok {
		t.Fatalf("password field stored for federated user: %v", doc)
	}
	if _, ok := doc["_id"]; ok {
		t.Fatalf("zero _id must be omitted so mongo assigns one")
	}
}

func TestMongoUser_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mu := mongoUser{
		ID:           oid,
		Email:        "a@example.com",
		PasswordHash: "hash",
		AccountType:  "business",
		CreatedAt:    created.Unix(),
	}

	u := mu.toDomain()
	if u.ID != oid.Hex() || u.AccountType != "business" || !u.HasPassword() {
		t.Fatalf("unexpected user: %+v", u)
	}
	if !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created at: %v", u.CreatedAt)
	}
	if !u.UpdatedAt.IsZero() {
		t.Fatalf("expected zero updated at, got %v", u.UpdatedAt)
	}
}
