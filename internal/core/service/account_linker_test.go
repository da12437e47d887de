package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
)

func TestAccountLinker_CreatesFederatedUser(t *testing.T) {
	users := newStubUserRepo()
	accounts := newStubAccountRepo()
	events := &recordingPublisher{}
	linker := NewAccountLinker(users, accounts, events, zerolog.Nop())

	user, err := linker.Resolve(context.Background(), ExternalProfile{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: "g-1",
		Email:             "New@Example.com",
		EmailVerified:     true,
		Name:              "New User",
	})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if user.HasPassword() {
		t.Fatalf("federated user must not have a password")
	}
	if user.Email != "new@example.com" || user.AccountType != domain.DefaultAccountType {
		t.Fatalf("unexpected user: %+v", user)
	}
	if _, err := accounts.FindByProvider(context.Background(), domain.ProviderGoogle, "g-1"); err != nil {
		t.Fatalf("account not linked: %v", err)
	}

	kinds := events.kinds()
	if len(kinds) != 2 || kinds[0] != domain.EventCreateUser || kinds[1] != domain.EventLinkAccount {
		t.Fatalf("unexpected events: %v", kinds)
	}
}

func TestAccountLinker_ReturnsLinkedUser(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "u1", Email: "a@example.com"})
	accounts := newStubAccountRepo()
	accounts.accounts["google/g-1"] = &domain.Account{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1", UserID: "u1"}
	linker := NewAccountLinker(users, accounts, nil, zerolog.Nop())

	user, err := linker.Resolve(context.Background(), ExternalProfile{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1", Email: "changed@example.com"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("expected linked user, got %s", user.ID)
	}
}

func TestAccountLinker_LinksVerifiedEmail(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "u1", Email: "a@example.com", PasswordHash: "x"})
	accounts := newStubAccountRepo()
	linker := NewAccountLinker(users, accounts, nil, zerolog.Nop())

	user, err := linker.Resolve(context.Background(), ExternalProfile{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1", Email: "a@example.com", EmailVerified: true})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("expected existing user, got %s", user.ID)
	}
	if len(users.users) != 1 {
		t.Fatalf("expected no new user")
	}
}

func TestAccountLinker_RefusesUnverifiedEmail(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "u1", Email: "a@example.com"})
	linker := NewAccountLinker(users, newStubAccountRepo(), nil, zerolog.Nop())

	_, err := linker.Resolve(context.Background(), ExternalProfile{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1", Email: "a@example.com"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAccountLinker_MissingEmail(t *testing.T) {
	linker := NewAccountLinker(newStubUserRepo(), newStubAccountRepo(), nil, zerolog.Nop())

	_, err := linker.Resolve(context.Background(), ExternalProfile{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestAccountLinker_RefusesUnverifiedNewUser(t *testing.T) {
	users := newStubUserRepo()
	accounts := newStubAccountRepo()
	events := &recordingPublisher{}
	linker := NewAccountLinker(users, accounts, events, zerolog.Nop())

	_, err := linker.Resolve(context.Background(), ExternalProfile{Provider: domain.ProviderGoogle, ProviderAccountID: "g-1", Email: "owner@example.com"})
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
	if len(users.users) != 0 || len(accounts.accounts) != 0 || len(events.events) != 0 {
		t.Fatalf("unverified profile left state behind: users=%d accounts=%d events=%d", len(users.users), len(accounts.accounts), len(events.events))
	}

	// The real owner can still register the address with a password.
	auth := NewAuthService(users, nil, zerolog.Nop())
	if _, err := auth.Register(context.Background(), "Owner", "owner@example.com", "correct horse"); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}
