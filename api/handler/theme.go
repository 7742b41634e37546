package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/pkg/httpcontext"
	taskUC "github.com/fastygo/todo/usecase/task"
)

type ThemeHandler struct {
	baseHandler
	store *taskUC.Store
}

func NewThemeHandler(store *taskUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary Get theme
// @Tags theme
// @Router /api/v1/theme [get]
func (h *ThemeHandler) GetTheme(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeResponse{DarkMode: h.store.DarkMode()})
}

// @Summary Toggle dark mode
// @Tags theme
// @Router /api/v1/theme/toggle [post]
func (h *ThemeHandler) ToggleTheme(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, transport.ThemeResponse{DarkMode: h.store.ToggleTheme()})
}
