package theme

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/storage"
	"github.com/taskmaster/core/storage/memory"
)

type syncWriter struct {
	kv storage.KV
	mu sync.Mutex
}

func (w *syncWriter) Enqueue(key string, value []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.kv.Set(context.Background(), key, value)
}

func (w *syncWriter) Invalidate(string) {}

func newTestStore(t *testing.T, systemDefault domain.ColorScheme) (*Store, storage.KV) {
	t.Helper()
	kv := memory.New()
	return New(kv, &syncWriter{kv: kv}, systemDefault, nil), kv
}

func TestRestore_UsesSystemDefaultWhenNothingStored(t *testing.T) {
	s, _ := newTestStore(t, domain.SchemeDark)
	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, domain.SchemeDark, s.Scheme())
}

func TestRestore_StoredOverrideWins(t *testing.T) {
	s, kv := newTestStore(t, domain.SchemeLight)
	require.NoError(t, kv.Set(context.Background(), storage.ThemeKey, []byte("dark")))

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, domain.SchemeDark, s.Scheme())
}

func TestRestore_IgnoresUnknownStoredValue(t *testing.T) {
	s, kv := newTestStore(t, domain.SchemeLight)
	require.NoError(t, kv.Set(context.Background(), storage.ThemeKey, []byte("sepia")))

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, domain.SchemeLight, s.Scheme())
}

func TestToggle_FlipsAndPersists(t *testing.T) {
	s, kv := newTestStore(t, domain.SchemeLight)

	assert.Equal(t, domain.SchemeDark, s.Toggle())
	stored, err := kv.Get(context.Background(), storage.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("dark"), stored)

	assert.Equal(t, domain.SchemeLight, s.Toggle())
	stored, err = kv.Get(context.Background(), storage.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("light"), stored)
}
