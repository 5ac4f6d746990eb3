// Package secrets resolves named secret blobs for the relay. The default
// backend is the process environment; deployments with a database configured
// use the encrypted PostgreSQL store instead.
package secrets

import (
	"context"
	"os"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when no secret exists under the requested name.
var ErrNotFound = errors.New("secret not found")

// Store resolves a secret blob by name.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// EnvStore reads secrets from environment variables.
type EnvStore struct{}

// Get returns the value of the environment variable with the given name.
// An unset or empty variable is ErrNotFound.
func (EnvStore) Get(_ context.Context, name string) ([]byte, error) {
	v := os.Getenv(name)
	if v == "" {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	return []byte(v), nil
}
