package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/middleware"
)

type Handlers struct {
	Task      *apiHandler.TaskHandler
	Selection *apiHandler.SelectionHandler
	Category  *apiHandler.CategoryHandler
	Theme     *apiHandler.ThemeHandler
	Health    *apiHandler.HealthHandler
	// Metrics is optional; /metrics is not registered when nil.
	Metrics fasthttp.RequestHandler
}

// New registers the API. /health and /metrics stay outside auth.
func New(handlers Handlers, auth middleware.Middleware) *router.Router {
	if auth == nil {
		auth = middleware.Passthrough
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", handlers.Metrics)
	}

	api := r.Group("/api/v1")

	api.GET("/tasks", auth(handlers.Task.GetVisibleTasks))
	api.GET("/tasks/all", auth(handlers.Task.GetAllTasks))
	api.POST("/tasks", auth(handlers.Task.CreateTask))
	api.GET("/tasks/{id}", auth(handlers.Task.GetTask))
	api.PUT("/tasks/{id}", auth(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", auth(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/toggle", auth(handlers.Task.ToggleTask))

	api.GET("/selection", auth(handlers.Selection.GetSelection))
	api.PUT("/selection", auth(handlers.Selection.UpdateSelection))

	api.GET("/categories", auth(handlers.Category.GetCategories))
	api.POST("/categories", auth(handlers.Category.CreateCategory))
	api.DELETE("/categories/{label}", auth(handlers.Category.DeleteCategory))

	api.GET("/theme", auth(handlers.Theme.GetTheme))
	api.POST("/theme/toggle", auth(handlers.Theme.ToggleTheme))

	return r
}
