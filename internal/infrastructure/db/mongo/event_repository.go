package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

const eventsCollection = "auth_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	db *mongo.Database
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) ports.EventRepository {
	return &EventRepository{db: db}
}

// InsertEvent appends an auth event to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	doc := bson.M{
		"eventId":     event.ID,
		"kind":        string(event.Kind),
		"userId":      event.UserID,
		"occurredAt":  event.OccurredAt.UTC(),
		"processedAt": time.Now().UTC(),
	}
	if event.Provider != "" {
		doc["provider"] = event.Provider
	}

	_, err := r.db.Collection(eventsCollection).InsertOne(ctx, doc)
	return err
}
