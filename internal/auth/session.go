// Package auth holds the login session shared by every API call.
package auth

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoSession is returned when no stored tokens exist.
var ErrNoSession = errors.New("not logged in")

// Tokens is the pair issued by a successful login.
type Tokens struct {
	Access  string
	Refresh string
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool { return t.Access == "" }

// TokenStore persists tokens across runs.
type TokenStore interface {
	// Load returns ErrNoSession when nothing is stored.
	Load() (Tokens, error)
	Save(Tokens) error
	Clear() error
}

// Session is the current login. It is safe for concurrent use; the API
// client reads the access token from it on every request.
type Session struct {
	mu     sync.RWMutex
	tokens Tokens
	store  TokenStore
}

// NewSession returns an inactive session backed by store. A nil store
// keeps tokens in memory only.
func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Restore loads previously saved tokens.
func (s *Session) Restore() error {
	if s.store == nil {
		return ErrNoSession
	}
	t, err := s.store.Load()
	if err != nil {
		return err
	}
	if t.Empty() {
		return ErrNoSession
	}
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
	return nil
}

// Begin activates the session with t and persists it.
func (s *Session) Begin(t Tokens) error {
	if t.Empty() {
		return errors.New("login returned no access token")
	}
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(t); err != nil {
			return fmt.Errorf("saving tokens: %w", err)
		}
	}
	return nil
}

// End clears the session and its stored tokens.
func (s *Session) End() error {
	s.mu.Lock()
	s.tokens = Tokens{}
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Clear(); err != nil {
			return fmt.Errorf("clearing tokens: %w", err)
		}
	}
	return nil
}

// Active reports whether an access token is held.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.tokens.Empty()
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Access
}

func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens.Refresh
}
