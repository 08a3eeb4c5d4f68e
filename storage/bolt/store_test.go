package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskmaster/core/storage"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskmaster.db")
	s, err := Open(path, "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_SetGetDelete(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "session")
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "session", []byte("alice")))

	got, err := s.Get(ctx, "session")
	require.NoError(t, err)
	require.Equal(t, []byte("alice"), got)

	require.NoError(t, s.Delete(ctx, "session"))
	_, err = s.Get(ctx, "session")
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	// deleting an absent key stays silent
	require.NoError(t, s.Delete(ctx, "session"))
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskmaster.db")
	ctx := context.Background()

	s, err := Open(path, "")
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "tasks:alice", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path, "")
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "tasks:alice")
	require.NoError(t, err)
	require.Equal(t, []byte(`[{"id":"1"}]`), got)
}

func TestStore_Ping(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestStore_GetHonorsContext(t *testing.T) {
	s, _ := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Get(ctx, "session")
	require.ErrorIs(t, err, context.Canceled)
}
