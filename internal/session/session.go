// Package session holds the device-local auth token and hands it to backend calls.
package session

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	apperrors "github.com/gmsas95/arogya-cli/internal/errors"
	"github.com/gmsas95/arogya-cli/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

const tokenKey = "auth:token"

// TokenProvider reads and writes the persisted access token.
// Token returns "" with a nil error when no token is stored.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// KV is the subset of the local store the token provider needs.
type KV interface {
	GetKV(key string) ([]byte, error)
	SetKV(key string, value []byte) error
	DeleteKV(key string) error
}

// StoreTokenProvider keeps the token in the local KV store.
type StoreTokenProvider struct {
	kv KV
}

func NewStoreTokenProvider(kv KV) *StoreTokenProvider {
	return &StoreTokenProvider{kv: kv}
}

func (p *StoreTokenProvider) Token(ctx context.Context) (string, error) {
	val, err := p.kv.GetKV(tokenKey)
	if stderrors.Is(err, store.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func (p *StoreTokenProvider) SetToken(ctx context.Context, token string) error {
	return p.kv.SetKV(tokenKey, []byte(token))
}

func (p *StoreTokenProvider) ClearToken(ctx context.Context) error {
	return p.kv.DeleteKV(tokenKey)
}

// StaticToken is an in-memory provider, used for env-supplied tokens and tests.
type StaticToken struct {
	mu    sync.RWMutex
	token string
}

func NewStaticToken(token string) *StaticToken {
	return &StaticToken{token: token}
}

func (s *StaticToken) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *StaticToken) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *StaticToken) ClearToken(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

// Session resolves the bearer token at call time. It never caches.
type Session struct {
	provider TokenProvider
	now      func() time.Time
}

func New(provider TokenProvider) *Session {
	return &Session{provider: provider, now: time.Now}
}

// WithNow overrides the clock used for expiry checks.
func (s *Session) WithNow(now func() time.Time) *Session {
	s.now = now
	return s
}

// Bearer returns the current access token or an auth error.
func (s *Session) Bearer(ctx context.Context) (string, error) {
	token, err := s.provider.Token(ctx)
	if err != nil {
		return "", apperrors.From(apperrors.ErrNoToken, err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.ErrNoToken
	}
	if exp, ok := expiry(token); ok && !s.now().Before(exp) {
		return "", apperrors.ErrTokenExpired
	}
	return token, nil
}

// SignedIn reports whether a usable token is available.
func (s *Session) SignedIn(ctx context.Context) bool {
	_, err := s.Bearer(ctx)
	return err == nil
}

// SignIn persists token for later calls.
func (s *Session) SignIn(ctx context.Context, token string) error {
	return s.provider.SetToken(ctx, strings.TrimSpace(token))
}

// SignOut forgets the stored token.
func (s *Session) SignOut(ctx context.Context) error {
	return s.provider.ClearToken(ctx)
}

// Expiry returns the exp claim of a JWT token, if it has one.
func (s *Session) Expiry(ctx context.Context) (time.Time, bool) {
	token, err := s.provider.Token(ctx)
	if err != nil {
		return time.Time{}, false
	}
	return expiry(strings.TrimSpace(token))
}

// expiry reads exp without verifying the signature. The backend owns verification.
func expiry(token string) (time.Time, bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
