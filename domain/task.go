package domain

import (
	"strings"
	"time"
)

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority maps a raw string onto a Priority. Unknown values fall back
// to medium, the creation default.
func ParsePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Valid reports whether p is one of the three known levels.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents one user-created to-do item.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Done        bool      `json:"done"`
	DueDate     *Date     `json:"due_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the fields a caller must supply before a task can be stored.
func (t *Task) Validate() error {
	if t == nil || strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Normalize fills creation defaults that the caller may omit.
func (t *Task) Normalize() {
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
}

// TaskPatch carries a partial update. Nil fields are left untouched.
// Ownership is deliberately unrepresentable here: a patch can never move a
// task to another user.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Done        *bool
	DueDate     *Date
}

// Apply merges the provided fields into t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Done != nil {
		t.Done = *p.Done
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
}

// Filter selects the subset of tasks shown in the derived list. It never
// affects counts, which always cover the full per-user set.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterHigh   Filter = "high"
	FilterMedium Filter = "medium"
	FilterLow    Filter = "low"
)

// ParseFilter maps a raw string onto a Filter.
func ParseFilter(raw string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(raw))) {
	case FilterAll, "":
		return FilterAll, nil
	case FilterHigh:
		return FilterHigh, nil
	case FilterMedium:
		return FilterMedium, nil
	case FilterLow:
		return FilterLow, nil
	default:
		return FilterAll, ErrInvalidFilter
	}
}

// Matches reports whether a task with priority p passes the filter.
func (f Filter) Matches(p Priority) bool {
	return f == FilterAll || Priority(f) == p
}
