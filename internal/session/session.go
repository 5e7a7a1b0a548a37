// Package session holds the auth token and cached user profile shared by
// every command. Implementations are safe for concurrent use.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clinic-booking-client/internal/model"
)

// Key names of the persisted entries.
const (
	KeyToken = "auth_token"
	KeyUser  = "user_data"
)

// Store is the durable holder for {token, user}. RemoveToken clears both.
type Store interface {
	SaveToken(token string) error
	Token() (string, bool)
	RemoveToken() error
	SaveUser(u *model.User) error
	User() (*model.User, bool)
}

var ErrEmptyToken = errors.New("empty token")

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	token string
	user  *model.User
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SaveToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *Memory) RemoveToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}

func (m *Memory) SaveUser(u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = cloneUser(u)
	return nil
}

func (m *Memory) User() (*model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneUser(m.user), m.user != nil
}

func cloneUser(u *model.User) *model.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature; the client only needs to know when to stop sending it.
// ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token carries an exp claim at or before now.
func Expired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
