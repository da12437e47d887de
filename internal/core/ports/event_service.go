package ports

import (
	"context"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// EventService handles a single auth lifecycle event.
type EventService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}

// EventPublisher hands events off without blocking the caller.
type EventPublisher interface {
	Publish(event domain.AuthEvent)
}
