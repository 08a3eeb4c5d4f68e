package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskmaster/core/api/transport"
	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/pkg/httpcontext"
	taskStore "github.com/taskmaster/core/store/task"
)

type TaskHandler struct {
	baseHandler
	tasks *taskStore.Store
}

func NewTaskHandler(tasks *taskStore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		tasks:       tasks,
	}
}

// @Summary Derived task view (filtered list + counts)
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.TaskListResponse{
		Tasks:  h.tasks.Filtered(),
		Filter: h.tasks.Filter(),
		Counts: h.tasks.Counts(),
	})
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.TaskCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	t, err := req.Task()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	created, err := h.tasks.Add(t)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Toggle completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	t, ok := h.tasks.Toggle(id)
	if !ok {
		// unknown or foreign id: defined as a no-op, not an error
		h.respondSuccess(ctx, http.StatusNoContent, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, t)
}

// @Summary Update task fields
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	var req transport.TaskUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	patch, err := req.Patch()
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	t, ok, err := h.tasks.Update(id, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !ok {
		h.respondSuccess(ctx, http.StatusNoContent, nil)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, t)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing task id", nil))
		return
	}

	h.tasks.Delete(id)
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Set the priority filter
// @Tags tasks
// @Router /api/v1/tasks/filter [put]
func (h *TaskHandler) SetFilter(ctx *fasthttp.RequestCtx) {
	var req transport.FilterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	filter, err := domain.ParseFilter(req.Filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.tasks.SetFilter(filter)
	h.respondSuccess(ctx, http.StatusOK, transport.TaskListResponse{
		Tasks:  h.tasks.Filtered(),
		Filter: h.tasks.Filter(),
		Counts: h.tasks.Counts(),
	})
}
