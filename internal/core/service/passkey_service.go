package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

const (
	ceremonyPasskeyLogin        = "webauthn_login"
	ceremonyPasskeyRegistration = "webauthn_registration"

	defaultCeremonyTTL = 5 * time.Minute
)

// PasskeyConfig controls the WebAuthn relying party.
type PasskeyConfig struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string
	CeremonyTTL   time.Duration
}

// webAuthnProvider is the subset of *webauthn.WebAuthn the service drives.
type webAuthnProvider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginDiscoverableLogin(opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidatePasskeyLogin(handler webauthn.DiscoverableUserHandler, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (webauthn.User, *webauthn.Credential, error)
}

type ceremony struct {
	UserID string               `json:"userId,omitempty"`
	Data   webauthn.SessionData `json:"data"`
}

// PasskeyService runs discoverable passkey sign-in and passkey registration
// for signed-in users.
type PasskeyService struct {
	webAuthn       webAuthnProvider
	parseAssertion func([]byte) (*protocol.ParsedCredentialAssertionData, error)
	parseCreation  func([]byte) (*protocol.ParsedCredentialCreationData, error)
	users          ports.UserRepository
	credentials    ports.PasskeyRepository
	store          ports.CeremonyStore
	ttl            time.Duration
	log            zerolog.Logger
	now            func() time.Time
}

func NewPasskeyService(cfg PasskeyConfig, users ports.UserRepository, credentials ports.PasskeyRepository, store ports.CeremonyStore, log zerolog.Logger) (*PasskeyService, error) {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}
	ttl := cfg.CeremonyTTL
	if ttl <= 0 {
		ttl = defaultCeremonyTTL
	}
	return &PasskeyService{
		webAuthn:       wa,
		parseAssertion: protocol.ParseCredentialRequestResponseBytes,
		parseCreation:  protocol.ParseCredentialCreationResponseBytes,
		users:          users,
		credentials:    credentials,
		store:          store,
		ttl:            ttl,
		log:            log,
		now:            time.Now,
	}, nil
}

// BeginLogin starts a discoverable login; the browser picks the credential.
func (s *PasskeyService) BeginLogin(ctx context.Context) (string, []byte, error) {
	assertion, session, err := s.webAuthn.BeginDiscoverableLogin()
	if err != nil {
		return "", nil, fmt.Errorf("begin passkey login: %w", err)
	}
	sessionID, err := s.saveCeremony(ctx, ceremonyPasskeyLogin, "", session)
	if err != nil {
		return "", nil, err
	}
	options, err := json.Marshal(assertion)
	if err != nil {
		return "", nil, fmt.Errorf("encode login options: %w", err)
	}
	return sessionID, options, nil
}

// FinishLogin validates the assertion and returns the identity of the
// credential owner. Any validation failure, including a credential with no
// stored record, is domain.ErrInvalidCredentials.
func (s *PasskeyService) FinishLogin(ctx context.Context, sessionID string, responseJSON []byte) (*domain.Identity, error) {
	c, err := s.loadCeremony(ctx, ceremonyPasskeyLogin, sessionID)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parseAssertion(responseJSON)
	if err != nil {
		s.log.Debug().Err(err).Msg("parse passkey assertion")
		return nil, domain.ErrInvalidCredentials
	}

	validated, credential, err := s.webAuthn.ValidatePasskeyLogin(s.userHandler(ctx), c.Data, parsed)
	if err != nil {
		s.log.Debug().Err(err).Msg("validate passkey assertion")
		return nil, domain.ErrInvalidCredentials
	}
	owner, ok := validated.(*passkeyUser)
	if !ok {
		return nil, errors.New("passkey user type mismatch")
	}

	err = s.storeCredential(ctx, owner.user.ID, *credential, true)
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound):
		s.log.Warn().Str("user_id", owner.user.ID).Msg("passkey assertion for unstored credential")
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("store passkey credential: %w", err)
	}

	return owner.user.Identity(domain.ProviderPasskey), nil
}

// BeginRegistration starts registering a new passkey for userID, excluding
// credentials the user already owns.
func (s *PasskeyService) BeginRegistration(ctx context.Context, userID string) (string, []byte, error) {
	owner, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
	}
	if len(owner.credentials) > 0 {
		opts = append(opts, webauthn.WithExclusions(webauthn.Credentials(owner.credentials).CredentialDescriptors()))
	}

	creation, session, err := s.webAuthn.BeginRegistration(owner, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("begin passkey registration: %w", err)
	}
	sessionID, err := s.saveCeremony(ctx, ceremonyPasskeyRegistration, userID, session)
	if err != nil {
		return "", nil, err
	}
	options, err := json.Marshal(creation)
	if err != nil {
		return "", nil, fmt.Errorf("encode registration options: %w", err)
	}
	return sessionID, options, nil
}

// FinishRegistration validates the attestation and stores the credential.
// The ceremony must belong to userID.
func (s *PasskeyService) FinishRegistration(ctx context.Context, userID, sessionID string, responseJSON []byte) (string, error) {
	c, err := s.loadCeremony(ctx, ceremonyPasskeyRegistration, sessionID)
	if err != nil {
		return "", err
	}
	if c.UserID != userID {
		return "", domain.ErrCeremonyNotFound
	}

	owner, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}

	parsed, err := s.parseCreation(responseJSON)
	if err != nil {
		s.log.Debug().Err(err).Msg("parse passkey attestation")
		return "", domain.ErrInvalidCredentials
	}
	credential, err := s.webAuthn.CreateCredential(owner, c.Data, parsed)
	if err != nil {
		s.log.Debug().Err(err).Msg("validate passkey attestation")
		return "", domain.ErrInvalidCredentials
	}

	if err := s.storeCredential(ctx, userID, *credential, false); err != nil {
		return "", fmt.Errorf("store passkey credential: %w", err)
	}
	s.log.Info().Str("user_id", userID).Msg("passkey registered")
	return encodeCredentialID(credential.ID), nil
}

type passkeyUser struct {
	user        *domain.User
	credentials []webauthn.Credential
}

func (u *passkeyUser) WebAuthnID() []byte {
	return []byte(u.user.ID)
}

func (u *passkeyUser) WebAuthnName() string {
	return u.user.Email
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	if u.user.Name != "" {
		return u.user.Name
	}
	return u.user.Email
}

func (u *passkeyUser) WebAuthnIcon() string {
	return ""
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func (s *PasskeyService) loadUser(ctx context.Context, userID string) (*passkeyUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	records, err := s.credentials.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list passkey credentials: %w", err)
	}
	credentials := make([]webauthn.Credential, 0, len(records))
	for _, record := range records {
		var credential webauthn.Credential
		if err := json.Unmarshal([]byte(record.CredentialJSON), &credential); err != nil {
			return nil, fmt.Errorf("decode credential %s: %w", record.CredentialID, err)
		}
		credentials = append(credentials, credential)
	}
	return &passkeyUser{user: user, credentials: credentials}, nil
}

func (s *PasskeyService) userHandler(ctx context.Context) webauthn.DiscoverableUserHandler {
	return func(_, userHandle []byte) (webauthn.User, error) {
		userID := string(userHandle)
		if strings.TrimSpace(userID) == "" {
			return nil, errors.New("user handle is required")
		}
		return s.loadUser(ctx, userID)
	}
}

func (s *PasskeyService) storeCredential(ctx context.Context, userID string, credential webauthn.Credential, used bool) error {
	credentialID := encodeCredentialID(credential.ID)
	now := s.now().UTC()

	createdAt := now
	stored, err := s.credentials.Get(ctx, credentialID)
	switch {
	case err == nil:
		createdAt = stored.CreatedAt
	case errors.Is(err, domain.ErrCredentialNotFound):
		if used {
			return domain.ErrCredentialNotFound
		}
	default:
		return err
	}

	payload, err := json.Marshal(credential)
	if err != nil {
		return err
	}
	record := domain.PasskeyCredential{
		CredentialID:   credentialID,
		UserID:         userID,
		CredentialJSON: string(payload),
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	if used {
		record.LastUsedAt = &now
	}
	return s.credentials.Put(ctx, record)
}

func (s *PasskeyService) saveCeremony(ctx context.Context, kind, userID string, session *webauthn.SessionData) (string, error) {
	if session == nil {
		return "", errors.New("session data is required")
	}
	payload, err := json.Marshal(ceremony{UserID: userID, Data: *session})
	if err != nil {
		return "", err
	}
	sessionID := uuid.NewString()
	if err := s.store.Put(ctx, kind, sessionID, payload, s.ttl); err != nil {
		return "", fmt.Errorf("store passkey ceremony: %w", err)
	}
	return sessionID, nil
}

func (s *PasskeyService) loadCeremony(ctx context.Context, kind, sessionID string) (*ceremony, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrCeremonyNotFound
	}
	raw, err := s.store.Take(ctx, kind, sessionID)
	if err != nil {
		return nil, err
	}
	var c ceremony
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode passkey ceremony: %w", err)
	}
	return &c, nil
}

func encodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}
