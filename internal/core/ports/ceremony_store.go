package ports

import (
	"context"
	"time"
)

// CeremonyStore keeps short-lived state for multi-step sign-in flows (OAuth
// state, WebAuthn session data). Take consumes the value: a second Take for
// the same key returns domain.ErrCeremonyNotFound.
type CeremonyStore interface {
	Put(ctx context.Context, kind, key string, value []byte, ttl time.Duration) error
	Take(ctx context.Context, kind, key string) ([]byte, error)
}
