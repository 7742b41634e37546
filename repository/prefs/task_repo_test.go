package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/todo/domain"
	"github.com/fastygo/todo/repository"
	"github.com/fastygo/todo/repository/memory"
)

func sameTask(a, b domain.Task) bool {
	if !domain.SameDueDate(&a, &b) {
		return false
	}
	a.DueAt, b.DueAt = nil, nil
	return reflect.DeepEqual(a, b)
}

func TestEncodeTaskShape(t *testing.T) {
	record, err := EncodeTask(domain.Task{
		ID:       "1",
		Title:    "Buy milk",
		Category: "Shopping",
		Priority: domain.PriorityLow,
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(record), &raw); err != nil {
		t.Fatalf("decode raw: %v", err)
	}
	for _, key := range []string{"id", "title", "description", "isCompleted", "dueDate", "category", "priority"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing key %q in %s", key, record)
		}
	}
	if raw["dueDate"] != nil {
		t.Fatalf("expected null dueDate, got %v", raw["dueDate"])
	}
	if raw["priority"] != float64(1) {
		t.Fatalf("expected numeric priority 1, got %v", raw["priority"])
	}
}

func TestTaskRecordRoundTrip(t *testing.T) {
	due := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	offsetDue := time.Date(2026, 12, 31, 23, 59, 0, 0, time.FixedZone("CET", 3600))

	cases := []domain.Task{
		{ID: "1", Title: "no due date", Priority: domain.PriorityMedium, Category: "Work"},
		{ID: "2", Title: "due", Description: "with text", Completed: true, DueAt: &due, Category: "Health", Priority: domain.PriorityHigh},
		{ID: "3", Title: "offset", DueAt: &offsetDue, Category: "Other", Priority: domain.PriorityLow},
	}
	for _, want := range cases {
		record, err := EncodeTask(want)
		if err != nil {
			t.Fatalf("encode %s: %v", want.ID, err)
		}
		got, err := DecodeTask(record)
		if err != nil {
			t.Fatalf("decode %s: %v", want.ID, err)
		}
		if !sameTask(got, want) {
			t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", want, got)
		}
	}
}

func TestDecodeTaskRejectsInvalidRecords(t *testing.T) {
	for _, record := range []string{
		`not json`,
		`{"title":"no id","priority":2}`,
		`{"id":"1","title":"bad priority","priority":7}`,
	} {
		if _, err := DecodeTask(record); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Fatalf("expected invalid error for %s, got %v", record, err)
		}
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	store := memory.New()
	repo := NewTaskRepository(store, nil)
	ctx := context.Background()

	if _, err := repo.LoadTasks(ctx); !errors.Is(err, domain.ErrPreferenceNotFound) {
		t.Fatalf("expected not found before first save, got %v", err)
	}

	tasks := []domain.Task{
		{ID: "a", Title: "first", Category: "Work", Priority: domain.PriorityHigh},
		{ID: "b", Title: "second", Category: "Personal", Priority: domain.PriorityMedium, Completed: true},
	}
	if err := repo.SaveTasks(ctx, tasks); err != nil {
		t.Fatalf("save tasks: %v", err)
	}
	loaded, err := repo.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("load tasks: %v", err)
	}
	if !reflect.DeepEqual(loaded, tasks) {
		t.Fatalf("unexpected tasks %#v", loaded)
	}

	if err := repo.SaveDarkMode(ctx, true); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	if dark, err := repo.LoadDarkMode(ctx); err != nil || !dark {
		t.Fatalf("expected dark mode, got %v (%v)", dark, err)
	}

	if err := repo.SaveCategories(ctx, []string{"Work", "Errands"}); err != nil {
		t.Fatalf("save categories: %v", err)
	}
	labels, err := repo.LoadCategories(ctx)
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"Work", "Errands"}) {
		t.Fatalf("unexpected categories %#v", labels)
	}
}

func TestLoadTasksSkipsCorruptRecords(t *testing.T) {
	store := memory.New()
	core, logs := observer.New(zap.WarnLevel)
	repo := NewTaskRepository(store, zap.New(core))
	ctx := context.Background()

	if err := store.SetStringList(ctx, repository.KeyTasks, []string{
		`{"id":"1","title":"ok","description":"","isCompleted":false,"dueDate":null,"category":"Work","priority":2}`,
		`{broken`,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tasks, err := repo.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Fatalf("unexpected tasks %#v", tasks)
	}
	if logs.FilterMessage("skipping undecodable task record").Len() != 1 {
		t.Fatalf("expected a warning for the corrupt record")
	}
}
