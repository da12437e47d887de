package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/99minutos/account-portal/internal/core/domain"
	"github.com/99minutos/account-portal/internal/core/ports"
)

const (
	ceremonyOAuthState = "oauth_state"
	oauthStateTTL      = 10 * time.Minute

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// GoogleConfig holds the OAuth client registration. Endpoint and UserInfoURL
// default to Google's production endpoints.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

type oauthState struct {
	Verifier    string `json:"verifier"`
	CallbackURL string `json:"callbackUrl"`
}

type googleProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleService runs the authorization code flow with PKCE against Google.
type GoogleService struct {
	oauth       *oauth2.Config
	userInfoURL string
	store       ports.CeremonyStore
	linker      *AccountLinker
	log         zerolog.Logger
}

func NewGoogleService(cfg GoogleConfig, store ports.CeremonyStore, linker *AccountLinker, log zerolog.Logger) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Google
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = googleUserInfoURL
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfo,
		store:       store,
		linker:      linker,
		log:         log,
	}
}

// Begin stores a fresh state and returns the Google consent URL.
func (s *GoogleService) Begin(ctx context.Context, callbackURL string) (string, error) {
	if s.oauth.ClientID == "" {
		return "", domain.ErrProviderUnavailable
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	payload, err := json.Marshal(oauthState{Verifier: verifier, CallbackURL: callbackURL})
	if err != nil {
		return "", err
	}
	if err := s.store.Put(ctx, ceremonyOAuthState, state, payload, oauthStateTTL); err != nil {
		return "", fmt.Errorf("google begin: %w", err)
	}

	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier)), nil
}

// Finish consumes the state, exchanges the code and resolves the user. It
// returns the identity and the callback URL recorded by Begin.
func (s *GoogleService) Finish(ctx context.Context, state, code string) (*domain.Identity, string, error) {
	if state == "" || code == "" {
		return nil, "", domain.ErrCeremonyNotFound
	}

	raw, err := s.store.Take(ctx, ceremonyOAuthState, state)
	if err != nil {
		return nil, "", err
	}
	var st oauthState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, "", fmt.Errorf("google finish: decode state: %w", err)
	}

	tok, err := s.oauth.Exchange(ctx, code, oauth2.VerifierOption(st.Verifier))
	if err != nil {
		return nil, "", fmt.Errorf("google finish: exchange: %w", err)
	}

	profile, err := s.fetchProfile(ctx, tok)
	if err != nil {
		return nil, "", err
	}

	user, err := s.linker.Resolve(ctx, ExternalProfile{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: profile.Sub,
		Email:             profile.Email,
		EmailVerified:     profile.EmailVerified,
		Name:              profile.Name,
	})
	if err != nil {
		return nil, "", err
	}

	return user.Identity(domain.ProviderGoogle), st.CallbackURL, nil
}

func (s *GoogleService) fetchProfile(ctx context.Context, tok *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: unexpected status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if profile.Sub == "" {
		return nil, errors.New("google userinfo: missing subject")
	}
	return &profile, nil
}
