// Package session tracks who is logged in. The identity is an unauthenticated
// username label used only for scoping the other stores.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/storage"
)

// ChangeFunc is invoked with the new username ("" on sign-out) whenever the
// active session changes through SignIn or SignOut. Restore does not fire it;
// callers load dependent stores explicitly after Restore returns.
type ChangeFunc func(username string)

// Store owns the active session and persists it across restarts.
//
// SignIn and SignOut persist synchronously before returning so a restart
// immediately after either call never observes a stale identity.
type Store struct {
	kv     storage.KV
	logger *zap.Logger

	mu      sync.RWMutex
	current string
	subs    []ChangeFunc
}

// New builds a session store over the provided KV.
func New(kv storage.KV, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kv,
		logger: logger,
	}
}

// Restore loads the persisted identity, if any. It must complete before
// dependent stores load their scoped data. A read failure leaves the session
// absent; this layer has no fatal errors.
func (s *Store) Restore(ctx context.Context) error {
	raw, err := s.kv.Get(ctx, storage.SessionKey)
	switch {
	case err == storage.ErrKeyNotFound:
		return nil
	case err != nil:
		s.logger.Error("session restore failed", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.current = string(raw)
	s.mu.Unlock()
	s.logger.Info("session restored", zap.String("username", string(raw)))
	return nil
}

// SignIn establishes name as the active session, overwriting any prior value,
// and returns the stored (trimmed) username. An empty name after trimming is
// a precondition violation and is refused before any state changes.
func (s *Store) SignIn(ctx context.Context, name string) (string, error) {
	username := domain.NormalizeUsername(name)
	if username == "" {
		return "", domain.ErrEmptyUsername
	}

	if err := s.kv.Set(ctx, storage.SessionKey, []byte(username)); err != nil {
		// in-memory state stays authoritative; the session is simply
		// unsaved for this process lifetime
		s.logger.Error("session persist failed", zap.Error(err))
	}

	s.mu.Lock()
	s.current = username
	s.mu.Unlock()

	s.notify(username)
	return username, nil
}

// SignOut clears the active session and removes the persisted value.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.SessionKey); err != nil {
		s.logger.Error("session removal failed", zap.Error(err))
	}

	s.mu.Lock()
	s.current = ""
	s.mu.Unlock()

	s.notify("")
	return nil
}

// Current returns the active username, or "" when signed out.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Active reports whether a session exists.
func (s *Store) Active() bool {
	return s.Current() != ""
}

// OnChange subscribes fn to session changes.
func (s *Store) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify(username string) {
	s.mu.RLock()
	subs := make([]ChangeFunc, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(username)
	}
}
