package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// Fixed keys under which the task store state is persisted.
const (
	KeyTasks      = "tasks"
	KeyDarkMode   = "isDarkMode"
	KeyCategories = "categories"
)

// TaskRepository persists the task store state. Each Load returns
// domain.ErrPreferenceNotFound when nothing was saved yet.
type TaskRepository interface {
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	SaveTasks(ctx context.Context, tasks []domain.Task) error
	LoadDarkMode(ctx context.Context) (bool, error)
	SaveDarkMode(ctx context.Context, dark bool) error
	LoadCategories(ctx context.Context) ([]string, error)
	SaveCategories(ctx context.Context, labels []string) error
}
