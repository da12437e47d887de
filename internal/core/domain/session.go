package domain

import "time"

// Identity providers.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
	ProviderPasskey     = "passkey"
)

// Fixed page routes.
const (
	PathSignIn     = "/auth/login"
	PathError      = "/auth/error"
	PathOnboarding = "/auth/onboarding"
	PathDashboard  = "/dashboard"
)

// Identity is the minimal projection returned by a successful authorization.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	AccountType string `json:"accountType"`
	Provider    string `json:"-"`
}

// Token carries the session claims. It reflects the associated user at
// issuance time and is never refreshed from storage.
type Token struct {
	ID          string
	AccountType string
	Email       string
	Name        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// SessionUser is the user view handed to the presentation layer.
type SessionUser struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	AccountType string `json:"accountType"`
}

// Session is the decoded, presentation-facing session.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// SignInDecision is the result of the sign-in gate. A denied decision with a
// non-empty RedirectTo diverts the user instead of failing.
type SignInDecision struct {
	Allowed    bool
	RedirectTo string
}
