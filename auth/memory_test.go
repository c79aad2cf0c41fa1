package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProviderAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	principal, err := p.CreateAccount(ctx, "Alice", "Alice@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, principal.ID)
	assert.Equal(t, "alice@example.com", principal.Email)

	_, err = p.CreateAccount(ctx, "Other", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestMemoryProviderSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	principal, err := p.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	// No session yet.
	current, err := p.GetCurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
	_, err = p.GetSession(ctx, SessionCurrent)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	session, err := p.CreateSession(ctx, Credentials{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, principal.ID, session.UserID)
	assert.NotEmpty(t, session.Token)

	got, err := p.GetSession(ctx, SessionCurrent)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	current, err = p.GetCurrentPrincipal(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, principal.ID, current.ID)

	sessions, err := p.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, p.DeleteSession(ctx, SessionCurrent))

	_, err = p.GetSession(ctx, SessionCurrent)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	current, err = p.GetCurrentPrincipal(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestMemoryProviderInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	_, err := p.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = p.CreateSession(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.CreateSession(ctx, Credentials{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemoryProviderValidateToken(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider()

	principal, err := p.CreateAccount(ctx, "Alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	session, err := p.CreateSession(ctx, Credentials{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := p.ValidateToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, got.Principal.ID)
	assert.Equal(t, session.ID, got.SessionID)

	_, err = p.ValidateToken(ctx, "bogus")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Deleting the session kills the token immediately.
	require.NoError(t, p.DeleteSession(ctx, session.ID))
	_, err = p.ValidateToken(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
