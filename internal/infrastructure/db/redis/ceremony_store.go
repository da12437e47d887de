package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// CeremonyStore keeps single-use sign-in state (OAuth state, WebAuthn
// session data) in Redis with a TTL.
// Key format: ceremony:<kind>:<key>
type CeremonyStore struct {
	client *redis.Client
}

// NewCeremonyStore creates a CeremonyStore wrapping the given Redis client.
func NewCeremonyStore(client *redis.Client) *CeremonyStore {
	return &CeremonyStore{client: client}
}

// Put stores value under kind/key until ttl elapses.
func (s *CeremonyStore) Put(ctx context.Context, kind, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(kind, key), value, ttl).Err(); err != nil {
		return fmt.Errorf("ceremony put: %w", err)
	}
	return nil
}

// Take atomically reads and deletes the value, so a ceremony can complete at
// most once.
func (s *CeremonyStore) Take(ctx context.Context, kind, key string) ([]byte, error) {
	val, err := s.client.GetDel(ctx, s.key(kind, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCeremonyNotFound
		}
		return nil, fmt.Errorf("ceremony take: %w", err)
	}
	return val, nil
}

func (s *CeremonyStore) key(kind, key string) string {
	return fmt.Sprintf("ceremony:%s:%s", kind, key)
}
