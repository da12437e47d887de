package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/account-portal/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User
	findErr error
	nextID  int
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	created := cloneUser(user)
	if created.ID == "" {
		r.nextID++
		created.ID = "user-" + strconv.Itoa(r.nextID)
	}
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) UpdateAccountType(_ context.Context, id, accountType string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.AccountType = accountType
	return nil
}

type stubOnboardingRepo struct {
	statuses map[string]*domain.OnboardingStatus
	findErr  error
}

func newStubOnboardingRepo(userIDs ...string) *stubOnboardingRepo {
	r := &stubOnboardingRepo{statuses: make(map[string]*domain.OnboardingStatus)}
	for _, id := range userIDs {
		r.statuses[id] = &domain.OnboardingStatus{UserID: id, AccountType: domain.AccountTypePersonal}
	}
	return r
}

func (r *stubOnboardingRepo) FindByUserID(_ context.Context, userID string) (*domain.OnboardingStatus, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if s, ok := r.statuses[userID]; ok {
		return s, nil
	}
	return nil, domain.ErrOnboardingNotFound
}

func (r *stubOnboardingRepo) Create(_ context.Context, status *domain.OnboardingStatus) error {
	r.statuses[status.UserID] = status
	return nil
}

type stubAccountRepo struct {
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) FindByProvider(_ context.Context, provider, providerAccountID string) (*domain.Account, error) {
	if a, ok := r.accounts[provider+"/"+providerAccountID]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) Link(_ context.Context, account *domain.Account) error {
	key := account.Provider + "/" + account.ProviderAccountID
	if _, ok := r.accounts[key]; ok {
		return domain.ErrUserExists
	}
	r.accounts[key] = account
	return nil
}

type stubPasskeyRepo struct {
	credentials map[string]domain.PasskeyCredential
}

func newStubPasskeyRepo() *stubPasskeyRepo {
	return &stubPasskeyRepo{credentials: make(map[string]domain.PasskeyCredential)}
}

func (r *stubPasskeyRepo) ListByUser(_ context.Context, userID string) ([]domain.PasskeyCredential, error) {
	var out []domain.PasskeyCredential
	for _, c := range r.credentials {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubPasskeyRepo) Get(_ context.Context, credentialID string) (*domain.PasskeyCredential, error) {
	if c, ok := r.credentials[credentialID]; ok {
		return &c, nil
	}
	return nil, domain.ErrCredentialNotFound
}

func (r *stubPasskeyRepo) Put(_ context.Context, credential domain.PasskeyCredential) error {
	r.credentials[credential.CredentialID] = credential
	return nil
}

type stubCeremonyStore struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newStubCeremonyStore() *stubCeremonyStore {
	return &stubCeremonyStore{values: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *stubCeremonyStore) Put(_ context.Context, kind, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[kind+":"+key] = value
	s.ttls[kind+":"+key] = ttl
	return nil
}

func (s *stubCeremonyStore) Take(_ context.Context, kind, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[kind+":"+key]
	if !ok {
		return nil, domain.ErrCeremonyNotFound
	}
	delete(s.values, kind+":"+key)
	return v, nil
}

type recordingPublisher struct {
	events []domain.AuthEvent
}

func (p *recordingPublisher) Publish(event domain.AuthEvent) {
	p.events = append(p.events, event)
}

func (p *recordingPublisher) kinds() []domain.AuthEventKind {
	out := make([]domain.AuthEventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

// fakeWebAuthn stands in for the relying party. Validation succeeds with
// credential unless validateErr is set; login resolves the owner through the
// discoverable user handler using userHandle, or returns user when set.
type fakeWebAuthn struct {
	credential  webauthn.Credential
	userHandle  []byte
	user        webauthn.User
	validateErr error
	createdFor  webauthn.User
}

func (f *fakeWebAuthn) BeginRegistration(user webauthn.User, _ ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error) {
	return &protocol.CredentialCreation{}, &webauthn.SessionData{Challenge: "registration-challenge", UserID: user.WebAuthnID()}, nil
}

func (f *fakeWebAuthn) CreateCredential(user webauthn.User, _ webauthn.SessionData, _ *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	f.createdFor = user
	credential := f.credential
	return &credential, nil
}

func (f *fakeWebAuthn) BeginDiscoverableLogin(_ ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error) {
	return &protocol.CredentialAssertion{}, &webauthn.SessionData{Challenge: "login-challenge"}, nil
}

func (f *fakeWebAuthn) ValidatePasskeyLogin(handler webauthn.DiscoverableUserHandler, _ webauthn.SessionData, _ *protocol.ParsedCredentialAssertionData) (webauthn.User, *webauthn.Credential, error) {
	if f.validateErr != nil {
		return nil, nil, f.validateErr
	}
	user := f.user
	if user == nil {
		var err error
		if user, err = handler(f.credential.ID, f.userHandle); err != nil {
			return nil, nil, err
		}
	}
	credential := f.credential
	return user, &credential, nil
}

type foreignWebAuthnUser struct{}

func (foreignWebAuthnUser) WebAuthnID() []byte { return []byte("foreign") }
func (foreignWebAuthnUser) WebAuthnName() string { return "foreign" }
func (foreignWebAuthnUser) WebAuthnDisplayName() string { return "foreign" }
func (foreignWebAuthnUser) WebAuthnCredentials() []webauthn.Credential { return nil }

var errBoom = errors.New("boom")

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
