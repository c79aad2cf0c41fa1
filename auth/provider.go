// File: /auth/provider.go
package auth

import (
	"context"
	"errors"
	"time"
)

// SessionCurrent selects the provider's active session.
const SessionCurrent = "current"

var (
	// ErrUnauthenticated is returned when no valid session exists.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is returned when email/password verification fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
)

// Principal is the externally-authenticated identity of a user,
// independent of their profile document.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is a capability token for one authenticated principal. Its
// validity must be re-checked against the provider, never cached.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionProvider is the authentication contract the session manager
// and HTTP layer are written against.
type SessionProvider interface {
	// GetCurrentPrincipal returns the principal of the active session,
	// or (nil, nil) when there is none. Only transport failures error.
	GetCurrentPrincipal(ctx context.Context) (*Principal, error)

	// CreateSession verifies credentials and opens a new session, which
	// becomes the provider's current session.
	CreateSession(ctx context.Context, creds Credentials) (*Session, error)

	// GetSession returns the session with the given id (SessionCurrent
	// for the active one), or ErrUnauthenticated if it is gone.
	GetSession(ctx context.Context, id string) (*Session, error)

	// ListSessions returns every live session for the current principal.
	ListSessions(ctx context.Context) ([]*Session, error)

	// DeleteSession invalidates one session by id or SessionCurrent.
	DeleteSession(ctx context.Context, id string) error
}

// AccountRegistrar creates login accounts. Kept separate from
// SessionProvider so session consumers never see registration.
type AccountRegistrar interface {
	CreateAccount(ctx context.Context, name, email, password string) (*Principal, error)
}

// Token is a validated bearer token resolved to its principal and the
// session backing it, so callers can scope operations to exactly the
// session the token names.
type Token struct {
	Principal Principal `json:"principal"`
	SessionID string    `json:"session_id"`
}

// TokenValidator resolves a bearer token, checking that the backing
// session is still live.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Token, error)
}
