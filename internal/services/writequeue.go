package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// KVWriter is the slice of the storage contract the queue needs.
type KVWriter interface {
	Set(ctx context.Context, key string, value []byte) error
}

// QueueConfig controls queue capacity and the failed-write retry schedule.
type QueueConfig struct {
	Depth         int
	WriteTimeout  time.Duration
	RetryInterval time.Duration
}

type queueEntry struct {
	key   string
	value []byte
	seq   uint64
}

// WriteQueue serializes asynchronous snapshot writes per key. Every enqueue
// gets a monotonically increasing sequence number for its key; an entry whose
// sequence is no longer the newest for that key is skipped, so storage always
// observes snapshots in mutation order and the final on-disk state is the
// last one enqueued. Failed writes keep the latest snapshot per key and are
// retried on a cron schedule; in-memory state stays authoritative throughout.
type WriteQueue struct {
	kv     KVWriter
	logger *zap.Logger
	cfg    QueueConfig
	cron   *cron.Cron

	mu      sync.Mutex
	latest  map[string]uint64
	failed  map[string]queueEntry
	pending int

	ch     chan queueEntry
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWriteQueue builds a queue over the provided writer.
func NewWriteQueue(kv KVWriter, logger *zap.Logger, cfg QueueConfig) *WriteQueue {
	if cfg.Depth <= 0 {
		cfg.Depth = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 3 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	q := &WriteQueue{
		kv:     kv,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(cron.WithSeconds()),
		latest: make(map[string]uint64),
		failed: make(map[string]queueEntry),
		ch:     make(chan queueEntry, cfg.Depth),
		stopCh: make(chan struct{}),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.RetryInterval.Seconds()))
	_, _ = q.cron.AddFunc(schedule, q.retryFailed)

	return q
}

// Start launches the worker and the retry scheduler.
func (q *WriteQueue) Start() {
	q.wg.Add(1)
	go q.worker()
	q.cron.Start()
	q.logger.Info("write queue started")
}

// Enqueue schedules value as the next snapshot for key. The call never blocks
// on storage; ordering relative to earlier enqueues for the same key is
// guaranteed by the sequence guard.
func (q *WriteQueue) Enqueue(key string, value []byte) {
	q.mu.Lock()
	q.latest[key]++
	e := queueEntry{
		key:   key,
		value: append([]byte(nil), value...),
		seq:   q.latest[key],
	}
	delete(q.failed, key)
	q.pending++
	q.mu.Unlock()

	select {
	case q.ch <- e:
	case <-q.stopCh:
		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
		q.logger.Warn("write dropped, queue stopped", zap.String("key", e.key))
	}
}

// Invalidate discards pending and failed snapshots for key. Called when the
// active session changes so a prior user's in-flight write is never applied
// after the next user's load.
func (q *WriteQueue) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.latest[key]++
	delete(q.failed, key)
}

// Flush blocks until every enqueued write has been attempted.
func (q *WriteQueue) Flush(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		q.mu.Lock()
		n := q.pending
		q.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop drains the queue and shuts the worker down.
func (q *WriteQueue) Stop(ctx context.Context) {
	stopCtx := q.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	if err := q.Flush(ctx); err != nil {
		q.logger.Warn("write queue flush interrupted", zap.Error(err))
	}
	close(q.stopCh)
	q.wg.Wait()
	q.logger.Info("write queue stopped")
}

// Depth reports the number of writes not yet attempted.
func (q *WriteQueue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// FailedKeys reports how many keys hold a snapshot that could not be written.
func (q *WriteQueue) FailedKeys() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.failed)
}

func (q *WriteQueue) worker() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			q.process(e)
		case <-q.stopCh:
			for {
				select {
				case e := <-q.ch:
					q.process(e)
				default:
					return
				}
			}
		}
	}
}

func (q *WriteQueue) process(e queueEntry) {
	defer func() {
		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
	}()

	q.mu.Lock()
	stale := q.latest[e.key] != e.seq
	q.mu.Unlock()
	if stale {
		// a newer snapshot is queued, or the key was invalidated
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.WriteTimeout)
	err := q.kv.Set(ctx, e.key, e.value)
	cancel()
	if err == nil {
		return
	}

	q.logger.Warn("snapshot write failed",
		zap.String("key", e.key),
		zap.Error(err))

	q.mu.Lock()
	if q.latest[e.key] == e.seq {
		q.failed[e.key] = e
	}
	q.mu.Unlock()
}

func (q *WriteQueue) retryFailed() {
	q.mu.Lock()
	entries := make([]queueEntry, 0, len(q.failed))
	for _, e := range q.failed {
		entries = append(entries, e)
	}
	q.mu.Unlock()

	for _, e := range entries {
		q.mu.Lock()
		current := q.latest[e.key] == e.seq
		q.mu.Unlock()
		if !current {
			continue
		}
		q.logger.Info("retrying failed snapshot", zap.String("key", e.key))
		q.Enqueue(e.key, e.value)
	}
}
