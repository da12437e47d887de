package queue

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
)

type recordingService struct {
	mu     sync.Mutex
	byUser map[string][]string
	done   chan struct{}
	want   int
	seen   int
}

func newRecordingService(want int) *recordingService {
	return &recordingService{byUser: make(map[string][]string), done: make(chan struct{}), want: want}
}

func (s *recordingService) Process(_ context.Context, event domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[event.UserID] = append(s.byUser[event.UserID], event.ID)
	s.seen++
	if s.seen == s.want {
		close(s.done)
	}
	return nil
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	const perUser = 20
	users := []string{"u1", "u2", "u3"}
	svc := newRecordingService(perUser * len(users))

	d := NewDispatcher(2, svc, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i := 0; i < perUser; i++ {
		for _, u := range users {
			d.Publish(domain.AuthEvent{ID: strconv.Itoa(i), Kind: domain.EventSignIn, UserID: u})
		}
	}

	select {
	case <-svc.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	for _, u := range users {
		got := svc.byUser[u]
		if len(got) != perUser {
			t.Fatalf("user %s: expected %d events, got %d", u, perUser, len(got))
		}
		for i, id := range got {
			if id != strconv.Itoa(i) {
				t.Fatalf("user %s: out of order at %d: %v", u, i, got)
			}
		}
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, newRecordingService(-1), zerolog.Nop())

	// Workers are not started, so the queue fills up.
	for i := 0; i < channelBuffer+5; i++ {
		d.Publish(domain.AuthEvent{ID: strconv.Itoa(i), UserID: "u1"})
	}

	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected %d queued events, got %d", channelBuffer, got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, newRecordingService(-1), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	if d.shardIndex("u1") != d.shardIndex("u1") {
		t.Fatalf("shard index not deterministic")
	}
}
