package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	taskUC "github.com/fastygo/todo/usecase/task"
)

type CategoryHandler struct {
	baseHandler
	store *taskUC.Store
}

func NewCategoryHandler(store *taskUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List categories
// @Tags categories
// @Router /api/v1/categories [get]
func (h *CategoryHandler) GetCategories(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.categories())
}

// @Summary Add category
// @Tags categories
// @Router /api/v1/categories [post]
func (h *CategoryHandler) CreateCategory(ctx *fasthttp.RequestCtx) {
	var req transport.CategoryRequest
	if !h.decode(ctx, &req) {
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" || label == domain.CategoryAll {
		h.respondError(ctx, domain.NewError(domain.ErrCodeInvalid, "invalid category label"))
		return
	}
	if !h.store.AddCategory(label) {
		h.respondError(ctx, domain.NewError(domain.ErrCodeConflict, "category already exists"))
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, h.categories())
}

// @Summary Remove category; its tasks move to the default category
// @Tags categories
// @Router /api/v1/categories/{label} [delete]
func (h *CategoryHandler) DeleteCategory(ctx *fasthttp.RequestCtx) {
	label := pathValue(ctx, "label")
	if unescaped, err := url.PathUnescape(label); err == nil {
		label = unescaped
	}
	removed, err := h.store.RemoveCategory(label)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if !removed {
		h.respondError(ctx, domain.ErrCategoryNotFound)
		return
	}
	h.requestLogger(ctx).Info("category removed", zap.String("category", label))
	h.respondSuccess(ctx, http.StatusOK, h.categories())
}

func (h *CategoryHandler) categories() transport.CategoriesResponse {
	return transport.CategoriesResponse{
		Categories: h.store.Categories(),
		Default:    h.store.DefaultCategory(),
	}
}
