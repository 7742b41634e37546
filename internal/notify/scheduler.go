package notify

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/usecase"
)

// Notification is what a notifier shows when a task falls due.
type Notification struct {
	Key    int32     `json:"key"`
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Body   string    `json:"body,omitempty"`
	DueAt  time.Time `json:"due_at"`
}

// Notifier delivers a fired notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Key derives the notification key from a task id: FNV-1a, masked to 31 bits.
func Key(taskID string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int32(h.Sum32() & 0x7fffffff)
}

// once fires a single time at at and never again.
type once struct {
	at time.Time
}

func (o once) Next(t time.Time) time.Time {
	if o.at.After(t) {
		return o.at
	}
	return time.Time{}
}

type entry struct {
	id     cron.EntryID
	taskID string
	seq    uint64
}

// Scheduler runs one cron job per pending due-date notification.
// Scheduling a key that is already pending replaces the earlier job.
type Scheduler struct {
	cron     *cron.Cron
	notifier Notifier
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[int32]entry
	seq     uint64

	onFire func(Notification)
}

var _ usecase.NotificationScheduler = (*Scheduler)(nil)

func NewScheduler(notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		notifier: notifier,
		logger:   logger,
		timeout:  5 * time.Second,
		now:      time.Now,
		entries:  make(map[int32]entry),
	}
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("notification scheduler started")
}

// Stop waits for running jobs or for ctx, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("notification scheduler stopped")
}

// Schedule arranges a notification at task.DueAt. Completed tasks and tasks
// that are already due are ignored.
func (s *Scheduler) Schedule(ctx context.Context, task domain.Task) error {
	if task.Completed || !task.HasDueDate() {
		return nil
	}
	due := *task.DueAt
	if !due.After(s.now()) {
		s.logger.Debug("skipping past-due notification", zap.String("task_id", task.ID))
		return nil
	}

	n := Notification{
		Key:    Key(task.ID),
		TaskID: task.ID,
		Title:  task.Title,
		Body:   task.Description,
		DueAt:  due,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[n.Key]; ok {
		s.cron.Remove(prev.id)
	}
	s.seq++
	seq := s.seq
	id := s.cron.Schedule(once{at: due}, cron.FuncJob(func() { s.fire(n, seq) }))
	s.entries[n.Key] = entry{id: id, taskID: task.ID, seq: seq}
	s.logger.Debug("notification scheduled",
		zap.String("task_id", task.ID),
		zap.Int32("key", n.Key),
		zap.Time("due_at", due))
	return nil
}

// Cancel drops the pending notification of taskID, if any.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) error {
	key := Key(taskID)
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[key]
	if !ok || prev.taskID != taskID {
		return nil
	}
	s.cron.Remove(prev.id)
	delete(s.entries, key)
	return nil
}

// Pending reports how many notifications are waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IsScheduled reports whether taskID has a pending notification.
func (s *Scheduler) IsScheduled(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[Key(taskID)]
	return ok && e.taskID == taskID
}

// OnFire registers a hook run after each delivery attempt.
func (s *Scheduler) OnFire(fn func(Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFire = fn
}

func (s *Scheduler) fire(n Notification, seq uint64) {
	s.mu.Lock()
	if e, ok := s.entries[n.Key]; ok && e.seq == seq {
		s.cron.Remove(e.id)
		delete(s.entries, n.Key)
	}
	hook := s.onFire
	s.mu.Unlock()

	if s.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.notifier.Notify(ctx, n)
		cancel()
		if err != nil {
			s.logger.Error("notification delivery failed", zap.String("task_id", n.TaskID), zap.Error(err))
		}
	}
	if hook != nil {
		hook(n)
	}
}
