package credentials

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore implements Store with a durable JSON file, so a process restart
// does not force re-login. Writes go to a temp file in the same directory
// followed by an atomic rename; a crash mid-write leaves the previous record
// intact rather than a torn one.
//
// With an encryption key configured, records are sealed with
// XChaCha20-Poly1305 before hitting disk.
type FileStore struct {
	mu   sync.Mutex
	path string
	key  []byte // nil means plaintext storage
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore) error

// WithEncryptionKey enables encryption-at-rest with the given 32-byte key.
func WithEncryptionKey(key []byte) FileStoreOption {
	return func(s *FileStore) error {
		if len(key) != chacha20poly1305.KeySize {
			return ErrInvalidKey
		}
		s.key = key
		return nil
	}
}

// NewFileStore creates a file-backed store at the given path.
// Parent directories are created on demand with owner-only permissions.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty file path", ErrStoreFailed)
	}

	s := &FileStore{path: path}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	return s, nil
}

// Get reads and decodes the stored session.
func (s *FileStore) Get(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, errors.Join(ErrStoreFailed, err)
	}

	if s.key != nil {
		if data, err = s.open(data); err != nil {
			return Session{}, err
		}
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, errors.Join(ErrStoreFailed, err)
	}
	return sess, nil
}

// Set writes the session to disk atomically.
func (s *FileStore) Set(ctx context.Context, sess Session) error {
	if sess.IsZero() {
		return ErrEmptySession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	if s.key != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Join(ErrStoreFailed, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Join(ErrStoreFailed, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// Clear removes the session file. Missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// seal encrypts data with a random nonce prepended to the ciphertext.
func (s *FileStore) seal(data []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	return aead.Seal(nonce, nonce, data, nil), nil
}

// open decrypts a record produced by seal.
func (s *FileStore) open(data []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, errors.Join(ErrStoreFailed, err)
	}

	if len(data) < aead.NonceSize() {
		return nil, ErrDecryptionFailed
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
