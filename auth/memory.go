// File: /auth/memory.go
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MemoryProvider is an in-process SessionProvider for development and
// tests. Failure hooks let tests simulate an unreachable provider on
// specific calls.
type MemoryProvider struct {
	mu       sync.Mutex
	accounts map[string]memoryAccount
	sessions map[string]*Session
	current  *Session

	// When set, the matching call fails with the given error.
	CreateSessionErr error
	DeleteSessionErr error
	GetSessionErr    error
	ListSessionsErr  error
}

type memoryAccount struct {
	id           string
	name         string
	passwordHash []byte
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		accounts: make(map[string]memoryAccount),
		sessions: make(map[string]*Session),
	}
}

func (p *MemoryProvider) CreateAccount(ctx context.Context, name, email, password string) (*Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email = strings.ToLower(email)
	if _, exists := p.accounts[email]; exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	account := memoryAccount{
		id:           uuid.New().String(),
		name:         name,
		passwordHash: hash,
	}
	p.accounts[email] = account

	return &Principal{ID: account.id, Email: email}, nil
}

func (p *MemoryProvider) CreateSession(ctx context.Context, creds Credentials) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateSessionErr != nil {
		return nil, p.CreateSessionErr
	}

	email := strings.ToLower(creds.Email)
	account, exists := p.accounts[email]
	if !exists {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(account.passwordHash, []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    account.id,
		Email:     email,
		Token:     uuid.New().String(),
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	p.sessions[session.ID] = session
	p.current = session

	out := *session
	return &out, nil
}

func (p *MemoryProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.GetSessionErr != nil {
		return nil, p.GetSessionErr
	}

	session := p.resolveLocked(id)
	if session == nil {
		return nil, ErrUnauthenticated
	}

	out := *session
	return &out, nil
}

func (p *MemoryProvider) GetCurrentPrincipal(ctx context.Context) (*Principal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, nil
	}
	if _, live := p.sessions[p.current.ID]; !live {
		p.current = nil
		return nil, nil
	}

	return &Principal{ID: p.current.UserID, Email: p.current.Email}, nil
}

func (p *MemoryProvider) ListSessions(ctx context.Context) ([]*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ListSessionsErr != nil {
		return nil, p.ListSessionsErr
	}
	if p.current == nil {
		return nil, ErrUnauthenticated
	}

	var out []*Session
	for _, session := range p.sessions {
		if session.UserID == p.current.UserID {
			copied := *session
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (p *MemoryProvider) DeleteSession(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.DeleteSessionErr != nil {
		return p.DeleteSessionErr
	}

	session := p.resolveLocked(id)
	if session == nil {
		return ErrUnauthenticated
	}

	delete(p.sessions, session.ID)
	if p.current != nil && p.current.ID == session.ID {
		p.current = nil
	}

	return nil
}

func (p *MemoryProvider) ValidateToken(ctx context.Context, token string) (*Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, session := range p.sessions {
		if session.Token == token {
			return &Token{
				Principal: Principal{ID: session.UserID, Email: session.Email},
				SessionID: session.ID,
			}, nil
		}
	}

	return nil, ErrUnauthenticated
}

// ExpireSessions drops every live session without going through
// DeleteSession, simulating remote invalidation.
func (p *MemoryProvider) ExpireSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sessions = make(map[string]*Session)
}

func (p *MemoryProvider) resolveLocked(id string) *Session {
	if id == SessionCurrent {
		if p.current == nil {
			return nil
		}
		id = p.current.ID
	}
	return p.sessions[id]
}
