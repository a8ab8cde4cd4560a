package credentials_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/core/credentials"
)

// storeContract runs the behavior shared by every Store implementation.
func storeContract(t *testing.T, newStore func(t *testing.T) credentials.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store returns ErrNoSession", func(t *testing.T) {
		store := newStore(t)

		_, err := store.Get(ctx)
		require.ErrorIs(t, err, credentials.ErrNoSession)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		store := newStore(t)
		sess := credentials.New(uuid.New(), "access", "refresh", "v1:abc")

		require.NoError(t, store.Set(ctx, sess))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, sess.AccessToken, got.AccessToken)
		assert.Equal(t, sess.RefreshToken, got.RefreshToken)
		assert.Equal(t, sess.UserID, got.UserID)
		assert.Equal(t, sess.Fingerprint, got.Fingerprint)
	})

	t.Run("set replaces wholesale", func(t *testing.T) {
		store := newStore(t)

		first := credentials.New(uuid.New(), "access-1", "refresh-1", "")
		second := credentials.New(uuid.New(), "access-2", "refresh-2", "")

		require.NoError(t, store.Set(ctx, first))
		require.NoError(t, store.Set(ctx, second))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "access-2", got.AccessToken)
		assert.Equal(t, "refresh-2", got.RefreshToken)
	})

	t.Run("rejects empty session", func(t *testing.T) {
		store := newStore(t)

		err := store.Set(ctx, credentials.Session{})
		require.ErrorIs(t, err, credentials.ErrEmptySession)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := newStore(t)
		sess := credentials.New(uuid.New(), "access", "refresh", "")

		require.NoError(t, store.Set(ctx, sess))
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx))

		_, err := store.Get(ctx)
		require.ErrorIs(t, err, credentials.ErrNoSession)
	})
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	storeContract(t, func(t *testing.T) credentials.Store {
		return credentials.NewMemoryStore()
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	t.Parallel()

	store := credentials.NewMemoryStore()
	ctx := context.Background()

	sess := credentials.New(uuid.New(), "access", "refresh", "")
	require.NoError(t, store.Set(ctx, sess))

	// Concurrent readers and writers must never observe a torn pair.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, credentials.New(uuid.New(), "access", "refresh", ""))
		}()
		go func() {
			defer wg.Done()
			got, err := store.Get(ctx)
			if err == nil {
				assert.Equal(t, "access", got.AccessToken)
				assert.Equal(t, "refresh", got.RefreshToken)
			}
		}()
	}
	wg.Wait()
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	storeContract(t, func(t *testing.T) credentials.Store {
		store, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
		require.NoError(t, err)
		return store
	})

	t.Run("rejects empty path", func(t *testing.T) {
		t.Parallel()

		_, err := credentials.NewFileStore("")
		require.Error(t, err)
	})

	t.Run("survives store recreation", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		path := filepath.Join(t.TempDir(), "session.json")
		store, err := credentials.NewFileStore(path)
		require.NoError(t, err)

		sess := credentials.New(uuid.New(), "access", "refresh", "v1:abc")
		require.NoError(t, store.Set(ctx, sess))

		// A fresh store over the same file sees the session: restart survival.
		reopened, err := credentials.NewFileStore(path)
		require.NoError(t, err)

		got, err := reopened.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, sess.RefreshToken, got.RefreshToken)
	})

	t.Run("session file is owner-only", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		path := filepath.Join(t.TempDir(), "session.json")
		store, err := credentials.NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, store.Set(ctx, credentials.New(uuid.New(), "a", "r", "")))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})
}

func TestFileStoreEncryption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	key := make([]byte, 32)
	copy(key, "0123456789abcdef0123456789abcdef")

	t.Run("rejects short key", func(t *testing.T) {
		t.Parallel()

		_, err := credentials.NewFileStore(filepath.Join(t.TempDir(), "s.json"),
			credentials.WithEncryptionKey([]byte("short")))
		require.ErrorIs(t, err, credentials.ErrInvalidKey)
	})

	t.Run("tokens never hit disk in plaintext", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.enc")
		store, err := credentials.NewFileStore(path, credentials.WithEncryptionKey(key))
		require.NoError(t, err)

		sess := credentials.New(uuid.New(), "very-secret-access", "very-secret-refresh", "")
		require.NoError(t, store.Set(ctx, sess))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "very-secret-access")
		assert.NotContains(t, string(raw), "very-secret-refresh")

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, sess.AccessToken, got.AccessToken)
	})

	t.Run("wrong key fails to decrypt", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.enc")
		store, err := credentials.NewFileStore(path, credentials.WithEncryptionKey(key))
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, credentials.New(uuid.New(), "a", "r", "")))

		otherKey := make([]byte, 32)
		reopened, err := credentials.NewFileStore(path, credentials.WithEncryptionKey(otherKey))
		require.NoError(t, err)

		_, err = reopened.Get(ctx)
		require.ErrorIs(t, err, credentials.ErrDecryptionFailed)
	})
}

func TestNewFileStoreFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("plaintext without key", func(t *testing.T) {
		t.Parallel()

		store, err := credentials.NewFileStoreFromConfig(credentials.FileConfig{
			Path: filepath.Join(t.TempDir(), "session.json"),
		})
		require.NoError(t, err)
		assert.NotNil(t, store)
	})

	t.Run("rejects invalid hex key", func(t *testing.T) {
		t.Parallel()

		_, err := credentials.NewFileStoreFromConfig(credentials.FileConfig{
			Path:          filepath.Join(t.TempDir(), "session.json"),
			EncryptionKey: "not-hex!",
		})
		require.ErrorIs(t, err, credentials.ErrInvalidKey)
	})
}
