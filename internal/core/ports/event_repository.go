package ports

import (
	"context"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// EventRepository persists auth lifecycle events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
