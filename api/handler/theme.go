package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskmaster/core/api/transport"
	"github.com/taskmaster/core/pkg/httpcontext"
	themeStore "github.com/taskmaster/core/store/theme"
)

type ThemeHandler struct {
	baseHandler
	themes *themeStore.Store
}

func NewThemeHandler(themes *themeStore.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		themes:      themes,
	}
}

// @Summary Active color scheme
// @Tags theme
// @Router /api/v1/theme [get]
func (h *ThemeHandler) Get(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeResponse{Scheme: h.themes.Scheme()})
}

// @Summary Flip the color scheme
// @Tags theme
// @Router /api/v1/theme/toggle [post]
func (h *ThemeHandler) Toggle(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeResponse{Scheme: h.themes.Toggle()})
}
