package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/internal/infrastructure/monitor"
	"github.com/fastygo/todo/pkg/httpcontext"
)

// StatusSource reports backend, buffer and write health.
type StatusSource interface {
	GetStatus() monitor.Status
}

// LoadState reports whether persisted state has been merged into the store.
type LoadState interface {
	Loaded() bool
	Revision() uint64
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
	store   LoadState
}

func NewHealthHandler(mon StatusSource, store LoadState, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
		store:       store,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"store": map[string]interface{}{
			"loaded":   h.store.Loaded(),
			"revision": h.store.Revision(),
		},
		"services": map[string]interface{}{
			status.Backend: map[string]interface{}{
				"online":            status.BackendOnline,
				"last_write_failed": status.LastWriteFailed,
			},
			"buffer": map[string]interface{}{
				"online": status.Buffer,
				"size":   status.BufferSize,
			},
		},
	}

	if status.BackendOnline && !status.LastWriteFailed {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "persistence unhealthy", payload))
}
