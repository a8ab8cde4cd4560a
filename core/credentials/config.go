package credentials

import (
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FileConfig provides environment-based configuration for the file store.
type FileConfig struct {
	// Path is the session file location.
	Path string `env:"SESSION_FILE_PATH,required"`

	// EncryptionKey is an optional hex-encoded 32-byte key enabling
	// encryption-at-rest. Empty means plaintext storage.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY" envDefault:""`
}

// NewFileStoreFromConfig creates a file-backed store from configuration.
func NewFileStoreFromConfig(cfg FileConfig) (*FileStore, error) {
	var opts []FileStoreOption
	if cfg.EncryptionKey != "" {
		key, err := hex.DecodeString(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid hex encoding", ErrInvalidKey)
		}
		opts = append(opts, WithEncryptionKey(key))
	}

	return NewFileStore(cfg.Path, opts...)
}

// RedisConfig provides environment-based configuration for the Redis store.
type RedisConfig struct {
	// ConnectionURL is the Redis connection string (redis:// or rediss://).
	ConnectionURL string `env:"SESSION_REDIS_URL,required"`

	// Key is the storage key for the session record.
	Key string `env:"SESSION_REDIS_KEY" envDefault:"sessionguard:session"`
}

// NewRedisStoreFromConfig creates a Redis-backed store from configuration.
// The caller owns the returned client's lifecycle via the store.
func NewRedisStoreFromConfig(cfg RedisConfig) (*RedisStore, error) {
	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailed, err)
	}

	return NewRedisStore(redis.NewClient(opt), WithRedisKey(cfg.Key)), nil
}
