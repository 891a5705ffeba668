package model

import "time"

// User represents an account held by the identity provider.
type User struct {
	ID        string
	Email     string
	AuthHash  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Credentials carries an email and password for sign-up and sign-in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the public view of an authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the credential proving an authenticated identity to the backend.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Identity  `json:"user"`
}

// Expired reports whether the session is past its expiry at now. A zero
// expiry never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SignUpResponse is returned by POST /auth/signup. Session is nil when the
// account must be confirmed before it can sign in.
type SignUpResponse struct {
	User    Identity `json:"user"`
	Session *Session `json:"session"`
}

// AuthEventKind classifies identity-provider notifications.
type AuthEventKind int

const (
	AuthSignedIn AuthEventKind = iota
	AuthSignedOut
	AuthTokenRefreshed
)

// String returns a human-readable event kind.
func (k AuthEventKind) String() string {
	switch k {
	case AuthSignedIn:
		return "signed_in"
	case AuthSignedOut:
		return "signed_out"
	case AuthTokenRefreshed:
		return "token_refreshed"
	default:
		return "unknown"
	}
}

// AuthEvent is one notification on the identity provider's session feed.
// Session is the new session for AuthSignedIn and AuthTokenRefreshed, and the
// session that ended for AuthSignedOut (nil when unknown).
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
