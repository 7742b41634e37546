package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/todo/api/transport"
	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/pkg/httpcontext"
	taskUC "github.com/fastygo/todo/usecase/task"
)

type TaskHandler struct {
	baseHandler
	store *taskUC.Store
}

func NewTaskHandler(store *taskUC.Store, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		store:       store,
	}
}

// @Summary List visible tasks (current selection applied)
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetVisibleTasks(ctx *fasthttp.RequestCtx) {
	visible := h.store.VisibleTasks()
	h.respondList(ctx, visible, transport.ListMeta{
		Count:     len(visible),
		Total:     len(h.store.Tasks()),
		Revision:  h.store.Revision(),
		Selection: h.store.Selection(),
	})
}

// @Summary List all tasks in insertion order
// @Tags tasks
// @Router /api/v1/tasks/all [get]
func (h *TaskHandler) GetAllTasks(ctx *fasthttp.RequestCtx) {
	tasks := h.store.Tasks()
	h.respondList(ctx, tasks, transport.ListMeta{
		Count:     len(tasks),
		Total:     len(tasks),
		Revision:  h.store.Revision(),
		Selection: h.store.Selection(),
	})
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	task, ok := h.store.Task(pathValue(ctx, "id"))
	if !ok {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	created, err := h.store.Add(task)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.requestLogger(ctx).Info("task created", zap.String("task_id", created.ID))
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Replace task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	task, ok := h.parseTask(ctx)
	if !ok {
		return
	}
	task.ID = pathValue(ctx, "id")

	updated, ok := h.store.Replace(task)
	if !ok {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	id := pathValue(ctx, "id")
	if !h.store.Delete(id) {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.requestLogger(ctx).Info("task deleted", zap.String("task_id", id))
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Toggle completion
// @Tags tasks
// @Router /api/v1/tasks/{id}/toggle [post]
func (h *TaskHandler) ToggleTask(ctx *fasthttp.RequestCtx) {
	id := pathValue(ctx, "id")
	task, ok := h.store.Toggle(id)
	if !ok {
		h.respondError(ctx, domain.ErrTaskNotFound)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// parseTask decodes and validates a task body. The store accepts anything,
// so the editing rules (non-empty title, known category, valid priority)
// are enforced here.
func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (domain.Task, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return domain.Task{}, false
	}

	task, err := h.toTask(req)
	if err != nil {
		h.respondError(ctx, err)
		return domain.Task{}, false
	}
	return task, true
}

func (h *TaskHandler) toTask(req transport.TaskRequest) (domain.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Task{}, domain.ErrEmptyTitle
	}
	if req.Category != "" && !h.store.HasCategory(req.Category) {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, domain.ErrUnknownCategory.Message, fmt.Errorf("%q", req.Category))
	}
	priority := domain.Priority(req.Priority)
	if priority != 0 && !priority.Valid() {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid priority", fmt.Errorf("%d", req.Priority))
	}

	var due *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid dueDate", err)
		}
		due = &parsed
	}

	return domain.Task{
		ID:          strings.TrimSpace(req.ID),
		Title:       title,
		Description: req.Description,
		Completed:   req.IsCompleted,
		DueAt:       due,
		Category:    req.Category,
		Priority:    priority,
	}, nil
}
