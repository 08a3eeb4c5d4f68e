// Package theme persists the light/dark preference. The host's reported
// system preference is the default until a stored override is found.
package theme

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/storage"
	"github.com/taskmaster/core/store"
)

// Store owns the color-scheme preference.
type Store struct {
	kv     storage.KV
	writer store.SnapshotWriter
	logger *zap.Logger

	mu     sync.RWMutex
	scheme domain.ColorScheme
}

// New builds a theme store starting at the system default.
func New(kv storage.KV, writer store.SnapshotWriter, systemDefault domain.ColorScheme, logger *zap.Logger) *Store {
	if systemDefault != domain.SchemeDark {
		systemDefault = domain.SchemeLight
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kv,
		writer: writer,
		logger: logger,
		scheme: systemDefault,
	}
}

// Restore applies a stored override if one exists. Read failures and
// unrecognized values keep the default.
func (s *Store) Restore(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.ThemeKey)
	switch {
	case err == storage.ErrKeyNotFound:
		return nil
	case err != nil:
		s.logger.Error("theme restore failed", zap.Error(err))
		return nil
	}

	scheme, ok := domain.ParseColorScheme(string(raw))
	if !ok {
		s.logger.Warn("ignoring unknown stored theme", zap.ByteString("value", raw))
		return nil
	}

	s.mu.Lock()
	s.scheme = scheme
	s.mu.Unlock()
	return nil
}

// Toggle flips the preference and persists it.
func (s *Store) Toggle() domain.ColorScheme {
	s.mu.Lock()
	s.scheme = s.scheme.Flip()
	scheme := s.scheme
	s.mu.Unlock()

	s.writer.Enqueue(storage.ThemeKey, []byte(scheme))
	return scheme
}

// Scheme returns the active preference.
func (s *Store) Scheme() domain.ColorScheme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scheme
}
