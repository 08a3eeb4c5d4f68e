package transport

import (
	"encoding/json"

	"github.com/taskmaster/core/domain"
	taskStore "github.com/taskmaster/core/store/task"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SessionResponse reports the active session.
type SessionResponse struct {
	Username string `json:"username"`
}

// TaskListResponse bundles the derived view: the filtered list plus counts
// over the full per-user set.
type TaskListResponse struct {
	Tasks  []domain.Task    `json:"tasks"`
	Filter domain.Filter    `json:"filter"`
	Counts taskStore.Counts `json:"counts"`
}

// ThemeResponse reports the active color scheme.
type ThemeResponse struct {
	Scheme domain.ColorScheme `json:"scheme"`
}
