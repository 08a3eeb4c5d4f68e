// Package storage defines the key-value contract the stores persist through
// and the key layout they share.
package storage

import (
	"context"
	"errors"
)

// Persisted key layout. Values are JSON or plain strings.
const (
	// SessionKey holds the active username, or is absent when signed out.
	SessionKey = "session"
	// ThemeKey holds "light" or "dark".
	ThemeKey = "theme"

	tasksKeyPrefix = "tasks:"
)

// TasksKey returns the per-user key holding that user's task snapshot.
func TasksKey(owner string) string {
	return tasksKeyPrefix + owner
}

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("storage: key not found")

// KV is the persistent string-keyed store the host platform supplies.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
