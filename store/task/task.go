// Package task owns the per-user task list: CRUD, a priority filter, and
// derived counts, all strictly scoped to the active session.
package task

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/storage"
	"github.com/taskmaster/core/store"
)

// Counts aggregates the full scoped set, independent of the filter.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Store holds the in-memory task set for the active session. Reads during
// Load go straight to storage; every mutation enqueues a full-set snapshot
// to the write queue, keyed by the owning user.
type Store struct {
	kv     storage.KV
	writer store.SnapshotWriter
	logger *zap.Logger

	mu     sync.RWMutex
	owner  string
	tasks  []domain.Task
	filter domain.Filter
}

// New builds a task store. The filter starts at "all" and is never persisted.
func New(kv storage.KV, writer store.SnapshotWriter, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kv,
		writer: writer,
		logger: logger,
		filter: domain.FilterAll,
	}
}

// Load switches the store to owner's task set. An empty owner empties the
// set without touching storage. The first time a user is observed with no
// stored data, a two-item seed set is synthesized and persisted immediately.
// A decode failure is logged and degrades to an empty set; it never crashes
// the process.
func (s *Store) Load(ctx context.Context, owner string) error {
	s.mu.Lock()

	if s.owner != "" && s.owner != owner {
		// writes still in flight for the previous user must never land
		// after this load
		s.writer.Invalidate(storage.TasksKey(s.owner))
	}
	s.owner = owner
	s.tasks = nil

	if owner == "" {
		s.mu.Unlock()
		return nil
	}

	key := storage.TasksKey(owner)
	raw, err := s.kv.Get(ctx, key)
	switch {
	case err == storage.ErrKeyNotFound:
		s.tasks = seedTasks(owner)
		payload := s.encodeLocked()
		s.mu.Unlock()
		s.logger.Info("seeded initial tasks", zap.String("owner", owner))
		s.persist(key, payload)
		return nil
	case err != nil:
		s.mu.Unlock()
		s.logger.Error("task snapshot read failed",
			zap.String("owner", owner),
			zap.Error(err))
		return nil
	}

	var decoded []domain.Task
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.mu.Unlock()
		s.logger.Error("task snapshot corrupt, starting empty",
			zap.String("owner", owner),
			zap.Error(err))
		return nil
	}

	// keep only records actually owned by this user, whatever the
	// snapshot claims
	for _, t := range decoded {
		if t.OwnerID == owner {
			s.tasks = append(s.tasks, t)
		}
	}
	s.mu.Unlock()
	return nil
}

// Add appends a task to the active user's set. The owner is forced to the
// active session regardless of what the caller supplied; insertion order is
// display order under the "all" filter.
func (s *Store) Add(t domain.Task) (domain.Task, error) {
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}

	s.mu.Lock()
	if s.owner == "" {
		s.mu.Unlock()
		return domain.Task{}, domain.ErrNoSession
	}

	t.OwnerID = s.owner
	t.Normalize()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.tasks = append(s.tasks, t)
	key, payload := storage.TasksKey(s.owner), s.encodeLocked()
	s.mu.Unlock()

	s.persist(key, payload)
	return t, nil
}

// Toggle flips the done flag of the task matching id and the active owner.
// No match is a silent no-op, reported through the second return value.
func (s *Store) Toggle(id string) (domain.Task, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false
	}

	s.tasks[idx].Done = !s.tasks[idx].Done
	s.tasks[idx].UpdatedAt = time.Now().UTC()
	t := s.tasks[idx]
	key, payload := storage.TasksKey(s.owner), s.encodeLocked()
	s.mu.Unlock()

	s.persist(key, payload)
	return t, true
}

// Update merges the provided fields into the matching task. A patch cannot
// carry ownership, so a task can never be reassigned. Setting an empty title
// is refused with no state change; no match is a silent no-op.
func (s *Store) Update(id string, patch domain.TaskPatch) (domain.Task, bool, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return domain.Task{}, false, domain.ErrEmptyTitle
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false, nil
	}

	patch.Apply(&s.tasks[idx])
	s.tasks[idx].Normalize()
	s.tasks[idx].UpdatedAt = time.Now().UTC()
	t := s.tasks[idx]
	key, payload := storage.TasksKey(s.owner), s.encodeLocked()
	s.mu.Unlock()

	s.persist(key, payload)
	return t, true, nil
}

// Delete removes the task matching id and the active owner. No match is a
// silent no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	key, payload := storage.TasksKey(s.owner), s.encodeLocked()
	s.mu.Unlock()

	s.persist(key, payload)
	return true
}

// SetFilter changes the derived view. Process-local, never persisted.
func (s *Store) SetFilter(f domain.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Filter returns the active filter.
func (s *Store) Filter() domain.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Owner returns the session the store is currently scoped to.
func (s *Store) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Tasks returns the full scoped set in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Filtered returns the scoped set restricted to the active filter, preserving
// insertion order. Under "all" it equals Tasks.
func (s *Store) Filtered() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if s.filter.Matches(t.Priority) {
			out = append(out, t)
		}
	}
	return out
}

// Counts aggregates over the full scoped set; the filter has no effect.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Done {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

func (s *Store) indexLocked(id string) int {
	if s.owner == "" {
		return -1
	}
	for i, t := range s.tasks {
		if t.ID == id && t.OwnerID == s.owner {
			return i
		}
	}
	return -1
}

func (s *Store) persist(key string, payload []byte) {
	if payload == nil {
		return
	}
	s.writer.Enqueue(key, payload)
}

func (s *Store) encodeLocked() []byte {
	payload, err := json.Marshal(s.tasks)
	if err != nil {
		// tasks contain nothing unmarshalable; keep the previous
		// snapshot rather than persisting garbage
		s.logger.Error("task snapshot encode failed", zap.Error(err))
		return nil
	}
	return payload
}

// seedTasks synthesizes the starter set shown the first time a user signs in
// with no stored data.
func seedTasks(owner string) []domain.Task {
	now := time.Now().UTC()
	today := domain.DateOf(now)
	first := today.AddDays(3)
	second := today.AddDays(7)

	return []domain.Task{
		{
			ID:          uuid.NewString(),
			OwnerID:     owner,
			Title:       "Plan the week ahead",
			Description: "Sketch the next few days and pick one priority",
			Priority:    domain.PriorityHigh,
			DueDate:     &first,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			OwnerID:     owner,
			Title:       "Explore TaskMaster",
			Description: "Add a task, toggle it, try the priority filter",
			Priority:    domain.PriorityMedium,
			DueDate:     &second,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
