package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/carepartner/internal/auth"
)

const serviceName = "carepartner"

const (
	accessTokenKey  = "access-token"
	refreshTokenKey = "refresh-token"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/carepartner/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("carepartner-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringStore keeps the session tokens in the system keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

var _ auth.TokenStore = (*KeyringStore)(nil)

// Open returns a KeyringStore on the platform keyring.
func Open() (*KeyringStore, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewKeyringStore(ring), nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// Load returns the stored tokens, or auth.ErrNoSession when there are none.
func (s *KeyringStore) Load() (auth.Tokens, error) {
	access, err := s.get(accessTokenKey)
	if err != nil {
		return auth.Tokens{}, err
	}
	refresh, err := s.get(refreshTokenKey)
	if err != nil && !errors.Is(err, auth.ErrNoSession) {
		return auth.Tokens{}, err
	}
	return auth.Tokens{Access: access, Refresh: refresh}, nil
}

// Save stores both tokens.
func (s *KeyringStore) Save(t auth.Tokens) error {
	if err := s.set(accessTokenKey, t.Access); err != nil {
		return err
	}
	return s.set(refreshTokenKey, t.Refresh)
}

// Clear removes both tokens. Missing entries are not an error.
func (s *KeyringStore) Clear() error {
	for _, key := range []string{accessTokenKey, refreshTokenKey} {
		if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("deleting credential %q: %w", key, err)
		}
	}
	return nil
}

func (s *KeyringStore) get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", auth.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (s *KeyringStore) set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}
