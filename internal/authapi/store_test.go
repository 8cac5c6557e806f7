package authapi

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newSessionStore(path)

	sess := &Session{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		User:         &Identity{ID: "u-1", Email: "a@b.com"},
	}
	require.NoError(t, store.Save(sess))

	got, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, sess.AccessToken, got.AccessToken)
	require.Equal(t, sess.RefreshToken, got.RefreshToken)
	require.Equal(t, "u-1", got.User.ID)
}

func TestSessionStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	store := newSessionStore(path)
	require.NoError(t, store.Save(&Session{AccessToken: "at"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionStore_MissingFileIsNoSession(t *testing.T) {
	store := newSessionStore(filepath.Join(t.TempDir(), "absent.json"))
	got, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSessionStore_SaveNilRemoves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := newSessionStore(path)
	require.NoError(t, store.Save(&Session{AccessToken: "at"}))
	require.NoError(t, store.Save(nil))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	require.NoError(t, store.Save(nil))
}
