package storage

import "errors"

var (
	// ErrNotFound means the key has never been saved. Callers treat this
	// as "start empty", not as a failure.
	ErrNotFound = errors.New("storage: key not found")

	// ErrUnavailable means the backing store cannot be reached or written.
	ErrUnavailable = errors.New("storage: unavailable")
)

// Store is the minimal durable key/value surface the client needs: one
// serialized blob per namespaced key.
type Store interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}
