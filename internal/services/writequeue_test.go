package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyKV records successful writes in order and can fail a configurable
// number of attempts per key.
type flakyKV struct {
	mu       sync.Mutex
	values   map[string][]byte
	order    []string
	failures map[string]int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{
		values:   make(map[string][]byte),
		failures: make(map[string]int),
	}
}

func (f *flakyKV) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[key] > 0 {
		f.failures[key]--
		return errors.New("disk unavailable")
	}
	f.values[key] = append([]byte(nil), value...)
	f.order = append(f.order, key+"="+string(value))
	return nil
}

func (f *flakyKV) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *flakyKV) writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func newTestQueue(t *testing.T, kv KVWriter, cfg QueueConfig) *WriteQueue {
	t.Helper()
	q := NewWriteQueue(kv, zap.NewNop(), cfg)
	q.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		q.Stop(ctx)
	})
	return q
}

func TestWriteQueue_LastSnapshotWins(t *testing.T) {
	kv := newFlakyKV()
	q := newTestQueue(t, kv, QueueConfig{})

	for i := 1; i <= 5; i++ {
		q.Enqueue("tasks:alice", []byte(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, q.Flush(context.Background()))

	got, ok := kv.get("tasks:alice")
	require.True(t, ok)
	require.Equal(t, []byte("v5"), got)

	// whatever subset of intermediate snapshots was written, the final
	// on-disk state must be the newest one and never regress
	writes := kv.writes()
	require.NotEmpty(t, writes)
	require.Equal(t, "tasks:alice=v5", writes[len(writes)-1])
}

func TestWriteQueue_KeysAreIndependent(t *testing.T) {
	kv := newFlakyKV()
	q := newTestQueue(t, kv, QueueConfig{})

	q.Enqueue("tasks:alice", []byte("a1"))
	q.Enqueue("theme", []byte("dark"))
	q.Enqueue("tasks:alice", []byte("a2"))
	require.NoError(t, q.Flush(context.Background()))

	gotAlice, ok := kv.get("tasks:alice")
	require.True(t, ok)
	require.Equal(t, []byte("a2"), gotAlice)

	gotTheme, ok := kv.get("theme")
	require.True(t, ok)
	require.Equal(t, []byte("dark"), gotTheme)
}

func TestWriteQueue_InvalidateDropsInFlightWrites(t *testing.T) {
	kv := newFlakyKV()
	q := NewWriteQueue(kv, zap.NewNop(), QueueConfig{})

	// enqueue before the worker starts so the entry is certainly pending
	// when the key is invalidated
	q.Enqueue("tasks:alice", []byte("stale"))
	q.Invalidate("tasks:alice")

	q.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		q.Stop(ctx)
	}()
	require.NoError(t, q.Flush(context.Background()))

	_, ok := kv.get("tasks:alice")
	require.False(t, ok, "a write for a prior user must never be applied after invalidation")
}

func TestWriteQueue_FailureKeepsMemoryAuthoritative(t *testing.T) {
	kv := newFlakyKV()
	kv.failures["theme"] = 1
	q := newTestQueue(t, kv, QueueConfig{})

	q.Enqueue("theme", []byte("dark"))
	require.NoError(t, q.Flush(context.Background()))

	require.Equal(t, 1, q.FailedKeys())
	_, ok := kv.get("theme")
	require.False(t, ok)

	// the next snapshot supersedes the failed one
	q.Enqueue("theme", []byte("light"))
	require.NoError(t, q.Flush(context.Background()))

	require.Equal(t, 0, q.FailedKeys())
	got, ok := kv.get("theme")
	require.True(t, ok)
	require.Equal(t, []byte("light"), got)
}

func TestWriteQueue_RetriesFailedSnapshot(t *testing.T) {
	kv := newFlakyKV()
	kv.failures["tasks:alice"] = 1
	q := newTestQueue(t, kv, QueueConfig{RetryInterval: time.Second})

	q.Enqueue("tasks:alice", []byte("v1"))
	require.NoError(t, q.Flush(context.Background()))
	require.Equal(t, 1, q.FailedKeys())

	require.Eventually(t, func() bool {
		_, ok := kv.get("tasks:alice")
		return ok && q.FailedKeys() == 0
	}, 5*time.Second, 50*time.Millisecond)
}
