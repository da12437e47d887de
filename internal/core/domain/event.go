package domain

import "time"

// AuthEventKind names a lifecycle notification.
type AuthEventKind string

const (
	EventSignIn      AuthEventKind = "signIn"
	EventSignOut     AuthEventKind = "signOut"
	EventCreateUser  AuthEventKind = "createUser"
	EventLinkAccount AuthEventKind = "linkAccount"
)

// AuthEvent is a fire-and-forget notification emitted by the sign-in flows.
type AuthEvent struct {
	ID         string
	Kind       AuthEventKind
	UserID     string
	Provider   string
	OccurredAt time.Time
}
