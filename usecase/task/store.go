package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/usecase"
)

// Options seeds the category set of a new store.
type Options struct {
	Categories      []string
	DefaultCategory string
}

type subscription struct {
	id int
	fn func(domain.Change)
}

// Store owns the task collection, the category set, the selection and the theme.
//
// Mutations are serialized by mu. Snapshots are handed to the persister and the
// scheduler while mu is held so their order matches the order of mutations;
// subscribers are called after mu is released and may read from the store, but
// must not mutate it synchronously.
type Store struct {
	repo      repository.TaskRepository
	persister usecase.Persister
	scheduler usecase.NotificationScheduler
	logger    *zap.Logger

	mu              sync.RWMutex
	tasks           []domain.Task
	categories      *domain.CategorySet
	defaultCategory string
	selection       domain.Selection
	darkMode        bool
	revision        uint64

	loaded          bool
	tasksDirty      bool
	themeDirty      bool
	categoriesDirty bool

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
}

// New builds an empty store. Call Load to pull persisted state; reads before
// that return an empty collection and the default theme, and writes are held
// in memory until the load has merged them.
func New(
	repo repository.TaskRepository,
	persister usecase.Persister,
	scheduler usecase.NotificationScheduler,
	logger *zap.Logger,
	opts Options,
) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	labels := opts.Categories
	if len(labels) == 0 {
		labels = domain.DefaultCategories
	}
	categories := domain.NewCategorySet(labels...)
	defaultCategory := opts.DefaultCategory
	if defaultCategory == "" {
		defaultCategory = categories.Labels()[0]
	}
	categories.Add(defaultCategory)

	return &Store{
		repo:            repo,
		persister:       persister,
		scheduler:       scheduler,
		logger:          logger,
		categories:      categories,
		defaultCategory: defaultCategory,
		selection:       domain.DefaultSelection(),
		// nothing to merge without a repository
		loaded: repo == nil,
	}
}

// Load merges persisted state into the store. Tasks written before the load
// completed are kept after the loaded ones and win on id collisions; theme and
// categories changed before the load keep their in-memory value.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
		return nil
	}

	var loadErr error
	tasks, err := s.repo.LoadTasks(ctx)
	if err != nil && !errors.Is(err, domain.ErrPreferenceNotFound) {
		loadErr = errors.Join(loadErr, err)
	}
	dark, err := s.repo.LoadDarkMode(ctx)
	darkFound := err == nil
	if err != nil && !errors.Is(err, domain.ErrPreferenceNotFound) {
		loadErr = errors.Join(loadErr, err)
	}
	labels, err := s.repo.LoadCategories(ctx)
	labelsFound := err == nil
	if err != nil && !errors.Is(err, domain.ErrPreferenceNotFound) {
		loadErr = errors.Join(loadErr, err)
	}
	if loadErr != nil {
		s.logger.Error("failed to load persisted state", zap.Error(loadErr))
		return loadErr
	}

	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return nil
	}

	merged := make([]domain.Task, 0, len(tasks)+len(s.tasks))
	index := make(map[string]int, len(tasks))
	for _, t := range tasks {
		if _, dup := index[t.ID]; dup {
			s.logger.Warn("dropping duplicate persisted task", zap.String("task_id", t.ID))
			continue
		}
		index[t.ID] = len(merged)
		merged = append(merged, t)
	}
	inMemory := make(map[string]struct{}, len(s.tasks))
	for _, t := range s.tasks {
		inMemory[t.ID] = struct{}{}
		if i, ok := index[t.ID]; ok {
			merged[i] = t
			continue
		}
		merged = append(merged, t)
	}
	s.tasks = merged

	if darkFound && !s.themeDirty {
		s.darkMode = dark
	}
	if labelsFound && !s.categoriesDirty {
		s.categories = domain.NewCategorySet(labels...)
		s.categories.Add(s.defaultCategory)
	}

	s.loaded = true
	if s.tasksDirty {
		s.persistTasksLocked()
	}
	if s.themeDirty {
		s.persistThemeLocked()
	}
	if s.categoriesDirty {
		s.persistCategoriesLocked()
	}
	s.tasksDirty, s.themeDirty, s.categoriesDirty = false, false, false
	for _, t := range s.tasks {
		if _, ok := inMemory[t.ID]; !ok {
			s.scheduleLocked(t)
		}
	}
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeLoaded})
	count := len(s.tasks)
	s.mu.Unlock()

	s.logger.Info("task store loaded", zap.Int("tasks", count), zap.Bool("dark_mode", s.DarkMode()))
	s.emit(change)
	return nil
}

// LoadWithRetry calls Load until it succeeds or ctx is done, doubling the
// pause between attempts from wait up to maxWait. Writes made meanwhile stay
// in memory and are merged by the attempt that succeeds.
func (s *Store) LoadWithRetry(ctx context.Context, wait, maxWait time.Duration) error {
	if wait <= 0 {
		wait = time.Second
	}
	if maxWait < wait {
		maxWait = wait
	}
	for attempt := 1; ; attempt++ {
		err := s.Load(ctx)
		if err == nil {
			return nil
		}
		s.logger.Warn("task store load failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if wait *= 2; wait > maxWait {
			wait = maxWait
		}
	}
}

// Add appends a task. An empty id is generated; an empty category or an
// unset priority take their defaults. Duplicate ids are rejected.
func (s *Store) Add(task domain.Task) (domain.Task, error) {
	s.mu.Lock()
	task = s.normalizeLocked(task.Clone())
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if s.indexLocked(task.ID) >= 0 {
		s.mu.Unlock()
		return domain.Task{}, domain.ErrDuplicateTask
	}

	s.tasks = append(s.tasks, task)
	s.persistTasksLocked()
	s.scheduleLocked(task)
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeTaskAdded, TaskID: task.ID})
	s.mu.Unlock()

	s.emit(change)
	return task.Clone(), nil
}

// Update replaces the task with the same id and reports whether it existed.
// The pending notification is cancelled and scheduled again from the new value.
func (s *Store) Update(task domain.Task) bool {
	_, ok := s.Replace(task)
	return ok
}

// Replace is Update returning the stored task as of the replacement.
func (s *Store) Replace(task domain.Task) (domain.Task, bool) {
	s.mu.Lock()
	idx := s.indexLocked(task.ID)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false
	}
	task = s.normalizeLocked(task.Clone())
	s.tasks[idx] = task
	s.persistTasksLocked()
	s.cancelLocked(task.ID)
	s.scheduleLocked(task)
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeTaskUpdated, TaskID: task.ID})
	out := task.Clone()
	s.mu.Unlock()

	s.emit(change)
	return out, true
}

// Delete removes the task with id and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.persistTasksLocked()
	s.cancelLocked(id)
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeTaskDeleted, TaskID: id})
	s.mu.Unlock()

	s.emit(change)
	return true
}

// ToggleCompleted flips the completion flag and reports whether the task existed.
func (s *Store) ToggleCompleted(id string) bool {
	_, ok := s.Toggle(id)
	return ok
}

// Toggle is ToggleCompleted returning the task as of the flip.
func (s *Store) Toggle(id string) (domain.Task, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.Task{}, false
	}
	s.tasks[idx].Completed = !s.tasks[idx].Completed
	task := s.tasks[idx]
	s.persistTasksLocked()
	if task.Completed {
		s.cancelLocked(id)
	} else {
		s.scheduleLocked(task)
	}
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeTaskToggled, TaskID: id})
	out := task.Clone()
	s.mu.Unlock()

	s.emit(change)
	return out, true
}

func (s *Store) SetCompletionFilter(f domain.CompletionFilter) {
	s.updateSelection(func(sel *domain.Selection) { sel.Completion = f })
}

func (s *Store) SetSearchQuery(q string) {
	s.updateSelection(func(sel *domain.Selection) { sel.SearchQuery = q })
}

func (s *Store) SetCategoryFilter(c string) {
	s.updateSelection(func(sel *domain.Selection) {
		if c == "" {
			c = domain.CategoryAll
		}
		sel.Category = c
	})
}

// AddCategory appends label unless it is empty or already present.
func (s *Store) AddCategory(label string) bool {
	s.mu.Lock()
	if !s.categories.Add(label) {
		s.mu.Unlock()
		return false
	}
	s.persistCategoriesLocked()
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeCategoryAdded, Category: label})
	s.mu.Unlock()

	s.emit(change)
	return true
}

// RemoveCategory drops label from the set. Tasks in that category move to the
// default category and a category filter pointing at it falls back to All.
// The default category itself cannot be removed.
func (s *Store) RemoveCategory(label string) (bool, error) {
	if label == s.defaultCategory {
		return false, domain.ErrDefaultCategory
	}

	s.mu.Lock()
	if !s.categories.Remove(label) {
		s.mu.Unlock()
		return false, nil
	}

	reassigned := 0
	for i := range s.tasks {
		if s.tasks[i].Category == label {
			s.tasks[i].Category = s.defaultCategory
			reassigned++
		}
	}
	if reassigned > 0 {
			s.persistTasksLocked()
	}
	if s.selection.Category == label {
		s.selection.Category = domain.CategoryAll
	}
	s.persistCategoriesLocked()
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeCategoryRemoved, Category: label})
	s.mu.Unlock()

	if reassigned > 0 {
		s.logger.Info("tasks moved to default category",
			zap.String("removed", label),
			zap.String("default", s.defaultCategory),
			zap.Int("count", reassigned))
	}
	s.emit(change)
	return true, nil
}

// ToggleTheme flips dark mode and returns the new value.
func (s *Store) ToggleTheme() bool {
	s.mu.Lock()
	s.darkMode = !s.darkMode
	dark := s.darkMode
	s.persistThemeLocked()
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeTheme})
	s.mu.Unlock()

	s.emit(change)
	return dark
}

// VisibleTasks computes the filtered view from scratch on every call.
func (s *Store) VisibleTasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterTasks(s.tasks, s.selection)
}

// Tasks returns a copy of the whole collection in insertion order.
func (s *Store) Tasks() []domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

func (s *Store) Task(id string) (domain.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.Labels()
}

func (s *Store) HasCategory(label string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.Contains(label)
}

func (s *Store) DefaultCategory() string {
	return s.defaultCategory
}

func (s *Store) Selection() domain.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Subscribe registers fn for every subsequent change. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(domain.Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) updateSelection(apply func(*domain.Selection)) {
	s.mu.Lock()
	apply(&s.selection)
	change := s.nextChangeLocked(domain.Change{Kind: domain.ChangeSelection})
	s.mu.Unlock()

	s.emit(change)
}

func (s *Store) emit(change domain.Change) {
	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(change)
	}
}

func (s *Store) nextChangeLocked(change domain.Change) domain.Change {
	s.revision++
	change.Revision = s.revision
	return change
}

func (s *Store) normalizeLocked(task domain.Task) domain.Task {
	if task.Category == "" {
		task.Category = s.defaultCategory
	}
	if !task.Priority.Valid() {
		task.Priority = domain.PriorityMedium
	}
	return task
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// The persist helpers only mark the entity dirty until Load has merged the
// stored state; an earlier write would replace what Load is about to read.

func (s *Store) persistTasksLocked() {
	if !s.loaded {
		s.tasksDirty = true
		return
	}
	if s.persister != nil {
		s.persister.PersistTasks(cloneTasks(s.tasks))
	}
}

func (s *Store) persistThemeLocked() {
	if !s.loaded {
		s.themeDirty = true
		return
	}
	if s.persister != nil {
		s.persister.PersistDarkMode(s.darkMode)
	}
}

func (s *Store) persistCategoriesLocked() {
	if !s.loaded {
		s.categoriesDirty = true
		return
	}
	if s.persister != nil {
		s.persister.PersistCategories(s.categories.Labels())
	}
}

func (s *Store) scheduleLocked(task domain.Task) {
	if s.scheduler == nil || task.Completed || !task.HasDueDate() {
		return
	}
	if err := s.scheduler.Schedule(context.Background(), task); err != nil {
		s.logger.Warn("failed to schedule due notification", zap.String("task_id", task.ID), zap.Error(err))
	}
}

func (s *Store) cancelLocked(id string) {
	if s.scheduler == nil {
		return
	}
	if err := s.scheduler.Cancel(context.Background(), id); err != nil {
		s.logger.Warn("failed to cancel due notification", zap.String("task_id", id), zap.Error(err))
	}
}

func cloneTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
