// File: /auth/redis.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"serenity-api/store"
)

const sessionTTL = time.Hour * 24 * 7

// RedisProvider implements SessionProvider with accounts stored in the
// document store and live sessions held in Redis. The bearer token is
// a signed JWT carrying the session id; deleting the Redis record
// invalidates the token even before it expires.
type RedisProvider struct {
	docs      store.DocumentStore
	rdb       *redis.Client
	jwtSecret string

	mu      sync.Mutex
	current *Session
}

func NewRedisProvider(docs store.DocumentStore, rdb *redis.Client, jwtSecret string) *RedisProvider {
	return &RedisProvider{
		docs:      docs,
		rdb:       rdb,
		jwtSecret: jwtSecret,
	}
}

func (p *RedisProvider) CreateAccount(ctx context.Context, name, email, password string) (*Principal, error) {
	email = strings.ToLower(email)

	existing, err := p.docs.ListDocuments(ctx, store.CollectionAccounts, store.Filters{"email": email})
	if err != nil {
		return nil, fmt.Errorf("accounts lookup: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doc, err := p.docs.CreateDocument(ctx, store.CollectionAccounts, uuid.New().String(), map[string]interface{}{
		"name":          name,
		"email":         email,
		"password_hash": string(hash),
	})
	if err != nil {
		return nil, fmt.Errorf("accounts create: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": doc.ID,
	}).Info("account created")

	return &Principal{ID: doc.ID, Email: email}, nil
}

func (p *RedisProvider) CreateSession(ctx context.Context, creds Credentials) (*Session, error) {
	email := strings.ToLower(creds.Email)

	accounts, err := p.docs.ListDocuments(ctx, store.CollectionAccounts, store.Filters{"email": email})
	if err != nil {
		return nil, fmt.Errorf("accounts lookup: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrInvalidCredentials
	}

	account := accounts[0]
	hash, _ := account.Fields["password_hash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		UserID:    account.ID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}

	token, err := p.signToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	session.Token = token

	pipe := p.rdb.Pipeline()
	pipe.HSet(ctx, sessionKey(session.ID), map[string]interface{}{
		"user_id": session.UserID,
		"email":   session.Email,
		"created": session.CreatedAt.Unix(),
	})
	pipe.Expire(ctx, sessionKey(session.ID), sessionTTL)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	p.mu.Lock()
	p.current = session
	p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"user_id":    session.UserID,
		"session_id": session.ID,
	}).Info("session created")

	return session, nil
}

func (p *RedisProvider) GetSession(ctx context.Context, id string) (*Session, error) {
	session := p.resolve(id)
	if session == nil {
		return nil, ErrUnauthenticated
	}

	live, err := p.rdb.Exists(ctx, sessionKey(session.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if live == 0 {
		p.forget(session.ID)
		return nil, ErrUnauthenticated
	}

	return session, nil
}

func (p *RedisProvider) GetCurrentPrincipal(ctx context.Context) (*Principal, error) {
	session := p.resolve(SessionCurrent)
	if session == nil {
		return nil, nil
	}

	fields, err := p.rdb.HGetAll(ctx, sessionKey(session.ID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		p.forget(session.ID)
		return nil, nil
	}

	return &Principal{ID: fields["user_id"], Email: fields["email"]}, nil
}

func (p *RedisProvider) ListSessions(ctx context.Context) ([]*Session, error) {
	session := p.resolve(SessionCurrent)
	if session == nil {
		return nil, ErrUnauthenticated
	}

	ids, err := p.rdb.SMembers(ctx, userSessionsKey(session.UserID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		fields, err := p.rdb.HGetAll(ctx, sessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if len(fields) == 0 {
			continue
		}
		sessions = append(sessions, &Session{
			ID:     id,
			UserID: fields["user_id"],
			Email:  fields["email"],
		})
	}

	return sessions, nil
}

func (p *RedisProvider) DeleteSession(ctx context.Context, id string) error {
	session := p.resolve(id)
	if session == nil {
		return ErrUnauthenticated
	}

	pipe := p.rdb.Pipeline()
	pipe.Del(ctx, sessionKey(session.ID))
	pipe.SRem(ctx, userSessionsKey(session.UserID), session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	p.forget(session.ID)

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
	}).Info("session deleted")

	return nil
}

// ValidateToken checks the JWT signature and that the session it names
// is still live in Redis.
func (p *RedisProvider) ValidateToken(ctx context.Context, tokenString string) (*Token, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(p.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthenticated
	}

	sessionID, _ := claims["session_id"].(string)
	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	if sessionID == "" || userID == "" {
		return nil, ErrUnauthenticated
	}

	live, err := p.rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if live == 0 {
		return nil, ErrUnauthenticated
	}

	return &Token{
		Principal: Principal{ID: userID, Email: email},
		SessionID: sessionID,
	}, nil
}

func (p *RedisProvider) signToken(session *Session) (string, error) {
	claims := jwt.MapClaims{
		"session_id": session.ID,
		"user_id":    session.UserID,
		"email":      session.Email,
		"exp":        session.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.jwtSecret))
}

// resolve maps SessionCurrent or a concrete id to the locally tracked
// session, or nil when the device has none.
func (p *RedisProvider) resolve(id string) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil
	}
	if id == SessionCurrent || id == p.current.ID {
		out := *p.current
		return &out
	}
	// Only the current session is tracked locally; other ids still
	// refer to this principal's sessions in Redis.
	out := *p.current
	out.ID = id
	out.Token = ""
	return &out
}

func (p *RedisProvider) forget(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.ID == id {
		p.current = nil
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

func userSessionsKey(userID string) string {
	return "sessions:user:" + userID
}
