package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrNilPointer is returned when Load receives a nil or non-pointer target.
var ErrNilPointer = errors.New("config target must be a non-nil pointer to a struct")

var (
	cache   sync.Map // reflect.Type -> any
	envOnce sync.Once
)

// Load parses environment variables into the target struct using `env` tags.
// Each configuration type is loaded once per process; subsequent calls for
// the same type return the cached value. A .env file in the working
// directory is loaded on first use if present.
func Load[T any](target *T) error {
	if target == nil {
		return ErrNilPointer
	}

	envOnce.Do(func() {
		// Missing .env is not an error: production environments
		// configure the process directly.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*target)
	if cached, ok := cache.Load(typ); ok {
		*target = cached.(T)
		return nil
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", typ.String(), err)
	}

	cache.Store(typ, *target)
	return nil
}

// MustLoad is like Load but panics on failure. Useful during application
// startup where a missing required variable should abort the process.
func MustLoad[T any](target *T) {
	if err := Load(target); err != nil {
		panic(err)
	}
}
