// File: /services/session_manager.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"serenity-api/auth"
	"serenity-api/localdata"
	"serenity-api/models"
)

// Local keys the manager persists for the signed-in identity.
const (
	localKeyUserID = "session.user_id"
	localKeyEmail  = "session.email"
)

// SessionManager owns the current principal, profile and session
// validity for the running process. It is constructed once and passed
// to callers explicitly.
//
// Operations are triggered by user interaction and expected to run one
// at a time; Login, Logout and LoadUserData do not guard against
// concurrent invocation and callers must serialize them.
type SessionManager struct {
	provider auth.SessionProvider
	profiles *ProfileService
	local    localdata.Store

	mu      sync.RWMutex
	user    *auth.Principal
	profile *models.Profile
	lastErr error
	loading bool

	resetHooks []func()
}

func NewSessionManager(provider auth.SessionProvider, profiles *ProfileService, local localdata.Store) *SessionManager {
	return &SessionManager{
		provider: provider,
		profiles: profiles,
		local:    local,
	}
}

// OnReset registers a hook run by ClearAllData, used to drop any
// attached consumer state (navigation, caches) back to its entry point.
func (m *SessionManager) OnReset(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetHooks = append(m.resetHooks, hook)
}

func (m *SessionManager) CurrentUser() *auth.Principal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *SessionManager) CurrentProfile() *models.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

func (m *SessionManager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// LoadUserData re-checks the current session and repopulates state
// from it. An invalid or absent session clears everything and returns
// nil. A profile fetch failure is non-fatal: the user stays
// authenticated with a nil profile.
func (m *SessionManager) LoadUserData(ctx context.Context) error {
	m.setLoading(true)
	defer m.setLoading(false)

	_, err := m.provider.GetSession(ctx, auth.SessionCurrent)
	if errors.Is(err, auth.ErrUnauthenticated) {
		m.ClearAllData()
		return nil
	}
	if err != nil {
		m.setError(err)
		return fmt.Errorf("verify session: %w", err)
	}

	principal, err := m.provider.GetCurrentPrincipal(ctx)
	if err != nil {
		m.setError(err)
		return fmt.Errorf("load principal: %w", err)
	}
	if principal == nil {
		m.ClearAllData()
		return nil
	}

	m.setIdentity(principal)

	profile, err := m.profiles.GetByUserID(ctx, principal.ID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": principal.ID,
		}).WithError(err).Warn("profile load failed, continuing without profile")
		m.setProfile(nil)
		return nil
	}
	m.setProfile(profile)

	return nil
}

// Login establishes a session for the given credentials. All local
// state is wiped before the new session is created so nothing from a
// previous identity survives into this one, and wiped again if any
// step fails.
func (m *SessionManager) Login(ctx context.Context, email, password string) error {
	m.ClearAllData()

	m.setLoading(true)
	defer m.setLoading(false)

	session, err := m.provider.CreateSession(ctx, auth.Credentials{Email: email, Password: password})
	if err != nil {
		m.ClearAllData()
		m.setError(err)
		return fmt.Errorf("create session: %w", err)
	}

	principal, err := m.provider.GetCurrentPrincipal(ctx)
	if err != nil || principal == nil {
		m.ClearAllData()
		if err == nil {
			err = auth.ErrUnauthenticated
		}
		m.setError(err)
		return fmt.Errorf("load principal: %w", err)
	}

	profile, err := m.profiles.CreateIfAbsent(ctx, principal.ID, ProfileSeed{
		Name:  principal.Email,
		Email: principal.Email,
	})
	if err != nil {
		m.ClearAllData()
		m.setError(err)
		return fmt.Errorf("load profile: %w", err)
	}

	m.setIdentity(principal)
	m.setProfile(profile)

	logrus.WithFields(logrus.Fields{
		"user_id":    principal.ID,
		"session_id": session.ID,
	}).Info("login complete")

	return nil
}

// Logout wipes local state first, then invalidates the remote
// sessions. A provider failure still propagates, but by then no local
// trace of the identity remains.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.ClearAllData()

	sessions, err := m.provider.ListSessions(ctx)
	if errors.Is(err, auth.ErrUnauthenticated) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	for _, session := range sessions {
		if err := m.provider.DeleteSession(ctx, session.ID); err != nil {
			return fmt.Errorf("delete session %s: %w", session.ID, err)
		}
	}

	logrus.Info("logout complete")

	return nil
}

// ClearAllData removes every locally persisted key, resets in-memory
// identity state and runs the registered reset hooks. Safe to call
// from any state, any number of times.
func (m *SessionManager) ClearAllData() {
	m.local.MultiRemove(m.local.GetAllKeys())

	m.mu.Lock()
	m.user = nil
	m.profile = nil
	m.lastErr = nil
	hooks := append([]func(){}, m.resetHooks...)
	m.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (m *SessionManager) setIdentity(principal *auth.Principal) {
	m.mu.Lock()
	m.user = principal
	m.mu.Unlock()

	m.local.Set(localKeyUserID, principal.ID)
	m.local.Set(localKeyEmail, principal.Email)
}

func (m *SessionManager) setProfile(profile *models.Profile) {
	m.mu.Lock()
	m.profile = profile
	m.mu.Unlock()
}

func (m *SessionManager) setError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *SessionManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}
