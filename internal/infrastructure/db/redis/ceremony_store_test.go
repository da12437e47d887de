package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// Runs against a live server when REDIS_ADDR is set.
func TestCeremonyStore_TakeIsSingleUse(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	client, err := Connect(ctx, Config{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	store := NewCeremonyStore(client)
	key := uuid.NewString()

	if err := store.Put(ctx, "test", key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	got, err := store.Take(ctx, "test", key)
	if err != nil || string(got) != "payload" {
		t.Fatalf("Take = %q, %v", got, err)
	}
	if _, err := store.Take(ctx, "test", key); !errors.Is(err, domain.ErrCeremonyNotFound) {
		t.Fatalf("expected ErrCeremonyNotFound, got %v", err)
	}
}

func TestCeremonyStore_Key(t *testing.T) {
	s := NewCeremonyStore(nil)
	if got := s.key("oauth_state", "abc"); got != "ceremony:oauth_state:abc" {
		t.Fatalf("unexpected key: %s", got)
	}
}
