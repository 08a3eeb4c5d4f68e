package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskmaster/core/api/transport"
	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/pkg/httpcontext"
	sessionStore "github.com/taskmaster/core/store/session"
)

type SessionHandler struct {
	baseHandler
	sessions *sessionStore.Store
}

func NewSessionHandler(sessions *sessionStore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
	}
}

// @Summary Sign in with a username label
// @Tags session
// @Router /api/v1/session/login [post]
func (h *SessionHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	username, err := h.sessions.SignIn(stdCtx, req.Username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.SessionResponse{Username: username})
}

// @Summary Sign out
// @Tags session
// @Router /api/v1/session/logout [post]
func (h *SessionHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.sessions.SignOut(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Current session
// @Tags session
// @Router /api/v1/session [get]
func (h *SessionHandler) Current(ctx *fasthttp.RequestCtx) {
	username := h.sessions.Current()
	if username == "" {
		h.respondError(ctx, domain.ErrNoSession)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SessionResponse{Username: username})
}
