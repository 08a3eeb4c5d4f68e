package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskmaster/core/storage"
)

// QueueStats is the slice of the write queue the monitor observes.
type QueueStats interface {
	Depth() int
	FailedKeys() int
}

// Monitor periodically probes local storage and the write queue so the
// health endpoint reports current figures without touching the hot path.
type Monitor struct {
	kv    storage.KV
	queue QueueStats

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(kv storage.KV, queue QueueStats, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		kv:       kv,
		queue:    queue,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Healthy reports whether storage answered the last probe.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Storage:   m.checkStorage(),
		LastCheck: time.Now(),
	}
	if m.queue != nil {
		status.QueueDepth = m.queue.Depth()
		status.FailedKeys = m.queue.FailedKeys()
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkStorage() bool {
	if m.kv == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.kv.Ping(ctx); err != nil {
		m.logger.Warn("storage probe failed", zap.Error(err))
		return false
	}
	return true
}
