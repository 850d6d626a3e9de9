package credential

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/auth"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	s := NewKeyringStore(keyring.NewArrayKeyring(nil))

	_, err := s.Load()
	assert.ErrorIs(t, err, auth.ErrNoSession)

	require.NoError(t, s.Save(auth.Tokens{Access: "acc", Refresh: "ref"}))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, auth.Tokens{Access: "acc", Refresh: "ref"}, got)

	require.NoError(t, s.Clear())
	_, err = s.Load()
	assert.ErrorIs(t, err, auth.ErrNoSession)

	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestKeyringStoreAccessOnly(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: accessTokenKey, Data: []byte("acc")}})
	got, err := NewKeyringStore(ring).Load()
	require.NoError(t, err)
	assert.Equal(t, "acc", got.Access)
	assert.Empty(t, got.Refresh)
}

func TestSessionOverKeyring(t *testing.T) {
	store := NewKeyringStore(keyring.NewArrayKeyring(nil))
	require.NoError(t, auth.NewSession(store).Begin(auth.Tokens{Access: "a", Refresh: "r"}))

	s := auth.NewSession(store)
	require.NoError(t, s.Restore())
	assert.Equal(t, "a", s.AccessToken())
}
