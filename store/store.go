// Package store holds the contracts shared by the session, task, and theme
// stores. The stores own in-memory state, recompute derived views on demand,
// and persist through an asynchronous snapshot writer.
package store

// SnapshotWriter abstracts the write queue so stores stay storage-agnostic.
// Enqueue is fire-and-forget; per-key ordering is the implementation's
// responsibility. Invalidate discards snapshots still in flight for a key.
type SnapshotWriter interface {
	Enqueue(key string, value []byte)
	Invalidate(key string)
}
