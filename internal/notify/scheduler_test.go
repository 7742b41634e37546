package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todo/domain"
)

type recordingNotifier struct {
	mu   sync.Mutex
	got  []Notification
	fail error
	ch   chan Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n Notification) error {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
	if r.ch != nil {
		r.ch <- n
	}
	return r.fail
}

func dueIn(d time.Duration) *time.Time {
	due := time.Now().Add(d)
	return &due
}

func TestKeyIsStableAndNonNegative(t *testing.T) {
	for _, id := range []string{"", "1", "1700000000000", "a-much-longer-identifier"} {
		k := Key(id)
		if k < 0 {
			t.Fatalf("negative key for %q: %d", id, k)
		}
		if k != Key(id) {
			t.Fatalf("key for %q is not stable", id)
		}
	}
	if Key("1") == Key("2") {
		t.Fatalf("distinct ids should hash apart")
	}
}

func TestScheduleSkipsIneligibleTasks(t *testing.T) {
	s := NewScheduler(nil, nil)
	ctx := context.Background()

	cases := []domain.Task{
		{ID: "no-due"},
		{ID: "past", DueAt: dueIn(-time.Minute)},
		{ID: "done", DueAt: dueIn(time.Hour), Completed: true},
	}
	for _, task := range cases {
		if err := s.Schedule(ctx, task); err != nil {
			t.Fatalf("schedule %s: %v", task.ID, err)
		}
	}
	if s.Pending() != 0 {
		t.Fatalf("expected nothing scheduled, got %d", s.Pending())
	}
}

func TestRescheduleAndCancel(t *testing.T) {
	s := NewScheduler(nil, nil)
	ctx := context.Background()

	task := domain.Task{ID: "1", Title: "call", DueAt: dueIn(time.Hour)}
	if err := s.Schedule(ctx, task); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	task.DueAt = dueIn(2 * time.Hour)
	if err := s.Schedule(ctx, task); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if s.Pending() != 1 || len(s.cron.Entries()) != 1 {
		t.Fatalf("reschedule should replace the job: pending=%d entries=%d", s.Pending(), len(s.cron.Entries()))
	}
	if !s.IsScheduled("1") {
		t.Fatalf("expected task 1 to be scheduled")
	}

	if err := s.Cancel(ctx, "1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.Pending() != 0 || len(s.cron.Entries()) != 0 {
		t.Fatalf("cancel should drop the job")
	}
	if err := s.Cancel(ctx, "unknown"); err != nil {
		t.Fatalf("cancel unknown: %v", err)
	}
}

func TestNotificationFires(t *testing.T) {
	notifier := &recordingNotifier{ch: make(chan Notification, 1)}
	s := NewScheduler(notifier, nil)
	s.Start()
	t.Cleanup(func() { s.Stop(context.Background()) })

	task := domain.Task{ID: "soon", Title: "stand up", DueAt: dueIn(100 * time.Millisecond)}
	if err := s.Schedule(context.Background(), task); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	select {
	case n := <-notifier.ch:
		if n.TaskID != "soon" || n.Title != "stand up" || n.Key != Key("soon") {
			t.Fatalf("unexpected notification %#v", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("notification did not fire")
	}

	deadline := time.Now().Add(time.Second)
	for s.Pending() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.Pending() != 0 {
		t.Fatalf("fired notification still pending")
	}
}

func TestDeliveryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	notifier := &recordingNotifier{fail: errors.New("boom")}
	s := NewScheduler(notifier, zap.New(core))

	s.fire(Notification{TaskID: "1", Key: Key("1")}, 0)
	if logs.FilterMessage("notification delivery failed").Len() != 1 {
		t.Fatalf("expected delivery failure to be logged")
	}
}

func TestRedisNotifierPublishes(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "todo:notifications")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := Multi{NewLogNotifier(nil), NewRedisNotifier(client, "")}
	if err := notifier.Notify(ctx, Notification{TaskID: "1", Title: "hello"}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Channel != "todo:notifications" {
			t.Fatalf("unexpected channel %s", msg.Channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no message published")
	}
}
