package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	taskUC "github.com/fastygo/todo/usecase/task"
)

// SelectionHandler exposes the view state: completion filter, search query
// and category filter.
type SelectionHandler struct {
	baseHandler
	store *taskUC.Store
}

func NewSelectionHandler(store *taskUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary Get selection
// @Tags selection
// @Router /api/v1/selection [get]
func (h *SelectionHandler) GetSelection(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, http.StatusOK, h.store.Selection())
}

// @Summary Update selection
// @Tags selection
// @Router /api/v1/selection [put]
func (h *SelectionHandler) UpdateSelection(ctx *fasthttp.RequestCtx) {
	var req transport.SelectionRequest
	if !h.decode(ctx, &req) {
		return
	}

	var completion domain.CompletionFilter
	if req.Completion != nil {
		parsed, err := domain.ParseCompletionFilter(*req.Completion)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		completion = parsed
	}
	if req.Category != nil && *req.Category != "" && *req.Category != domain.CategoryAll && !h.store.HasCategory(*req.Category) {
		h.respondError(ctx, domain.ErrUnknownCategory)
		return
	}

	if req.Completion != nil {
		h.store.SetCompletionFilter(completion)
	}
	if req.SearchQuery != nil {
		h.store.SetSearchQuery(*req.SearchQuery)
	}
	if req.Category != nil {
		h.store.SetCategoryFilter(*req.Category)
	}
	h.respondSuccess(ctx, http.StatusOK, h.store.Selection())
}
