package transport

import (
	"github.com/taskmaster/core/domain"
)

// LoginRequest carries the username label for an unauthenticated sign-in.
type LoginRequest struct {
	Username string `json:"username"`
}

// TaskCreateRequest is the payload for creating a task. There is no owner
// field: ownership always comes from the active session.
type TaskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// Task builds the domain task described by the request.
func (r TaskCreateRequest) Task() (domain.Task, error) {
	t := domain.Task{
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.ParsePriority(r.Priority),
	}
	if r.DueDate != "" {
		due, err := domain.ParseDate(r.DueDate)
		if err != nil {
			return domain.Task{}, err
		}
		t.DueDate = &due
	}
	return t, nil
}

// TaskUpdateRequest is the partial-update payload. Absent fields stay
// untouched; an owner field is not representable here, so ownership can
// never be reassigned through the API.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Done        *bool   `json:"done"`
	DueDate     *string `json:"due_date"`
}

// Patch converts the request into a domain patch.
func (r TaskUpdateRequest) Patch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Done:        r.Done,
	}
	if r.Priority != nil {
		priority := domain.ParsePriority(*r.Priority)
		p.Priority = &priority
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, err := domain.ParseDate(*r.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.DueDate = &due
	}
	return p, nil
}

// FilterRequest selects the derived task view.
type FilterRequest struct {
	Filter string `json:"filter"`
}
