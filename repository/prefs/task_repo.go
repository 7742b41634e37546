// Package prefs maps the task store state onto a key-value PreferenceStore.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
)

type taskRepository struct {
	store  repository.PreferenceStore
	logger *zap.Logger
}

// NewTaskRepository stores tasks as a list of JSON records under repository.KeyTasks.
func NewTaskRepository(store repository.PreferenceStore, logger *zap.Logger) repository.TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskRepository{store: store, logger: logger}
}

// LoadTasks skips records that fail to decode rather than failing the whole load.
func (r *taskRepository) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	records, err := r.store.GetStringList(ctx, repository.KeyTasks)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(records))
	for i, record := range records {
		task, err := DecodeTask(record)
		if err != nil {
			r.logger.Warn("skipping undecodable task record", zap.Int("index", i), zap.Error(err))
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *taskRepository) SaveTasks(ctx context.Context, tasks []domain.Task) error {
	records := make([]string, 0, len(tasks))
	for _, task := range tasks {
		record, err := EncodeTask(task)
		if err != nil {
			return err
		}
		records = append(records, record)
	}
	return r.store.SetStringList(ctx, repository.KeyTasks, records)
}

func (r *taskRepository) LoadDarkMode(ctx context.Context) (bool, error) {
	return r.store.GetBool(ctx, repository.KeyDarkMode)
}

func (r *taskRepository) SaveDarkMode(ctx context.Context, dark bool) error {
	return r.store.SetBool(ctx, repository.KeyDarkMode, dark)
}

func (r *taskRepository) LoadCategories(ctx context.Context) ([]string, error) {
	return r.store.GetStringList(ctx, repository.KeyCategories)
}

func (r *taskRepository) SaveCategories(ctx context.Context, labels []string) error {
	return r.store.SetStringList(ctx, repository.KeyCategories, labels)
}

// EncodeTask renders the persisted JSON record of a task.
func EncodeTask(task domain.Task) (string, error) {
	b, err := json.Marshal(task)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTask parses a persisted record. Records without an id or with an
// out-of-range priority are rejected.
func DecodeTask(record string) (domain.Task, error) {
	var task domain.Task
	if err := json.Unmarshal([]byte(record), &task); err != nil {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid task record", err)
	}
	if task.ID == "" {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid task record", fmt.Errorf("missing id"))
	}
	if !task.Priority.Valid() {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "invalid task record", fmt.Errorf("priority %d", task.Priority))
	}
	return task, nil
}
