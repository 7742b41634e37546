package usecase

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// Persister receives state snapshots after each mutation. Implementations must
// not block the caller; durable writes happen asynchronously.
type Persister interface {
	PersistTasks(tasks []domain.Task)
	PersistDarkMode(dark bool)
	PersistCategories(labels []string)
}

// NotificationScheduler arranges a due-date reminder per task.
type NotificationScheduler interface {
	Schedule(ctx context.Context, task domain.Task) error
	Cancel(ctx context.Context, taskID string) error
}
