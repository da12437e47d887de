package domain

import "time"

const (
	AccountTypePersonal = "personal"
	AccountTypeBusiness = "business"

	DefaultAccountType = AccountTypePersonal
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t string) bool {
	return t == AccountTypePersonal || t == AccountTypeBusiness
}

// User models a person able to sign in. PasswordHash is empty for
// federated-only accounts (Google, passkey).
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	AccountType  string    `json:"accountType"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the user can authenticate with credentials.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// Identity projects the user fields that flow into the session token.
func (u *User) Identity(provider string) *Identity {
	return &Identity{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		AccountType: u.AccountType,
		Provider:    provider,
	}
}

// OnboardingStatus marks a user as having completed onboarding. Its
// existence is the signal; the fields are informational.
type OnboardingStatus struct {
	UserID      string    `json:"userId"`
	AccountType string    `json:"accountType"`
	CompletedAt time.Time `json:"completedAt"`
}

// Account links a user to an external identity provider.
type Account struct {
	Provider          string
	ProviderAccountID string
	UserID            string
	CreatedAt         time.Time
}

// PasskeyCredential is a stored WebAuthn credential. CredentialJSON holds the
// library's serialized credential.
type PasskeyCredential struct {
	CredentialID   string
	UserID         string
	CredentialJSON string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastUsedAt     *time.Time
}
