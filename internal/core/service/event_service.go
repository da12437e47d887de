package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/api/metrics"
	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService that persists auth events.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{eventRepo: eventRepo, log: log}
}

// Process persists a single auth event to the audit trail.
func (s *eventService) Process(ctx context.Context, event domain.AuthEvent) error {
	start := time.Now()
	kind := string(event.Kind)
	defer func() {
		metrics.EventProcessingDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	if event.OccurredAt.IsZero() {
		event.OccurredAt = start.UTC()
	}

	if err := s.eventRepo.InsertEvent(ctx, &event); err != nil {
		metrics.EventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("process event: %w", err)
	}

	metrics.EventsProcessedTotal.WithLabelValues(kind).Inc()
	s.log.Debug().
		Str("event_id", event.ID).
		Str("kind", kind).
		Str("user_id", event.UserID).
		Str("provider", event.Provider).
		Msg("auth event processed")

	return nil
}
