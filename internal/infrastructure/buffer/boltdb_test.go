package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func openTestBuffer(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueReplacesSameEntity(t *testing.T) {
	store := openTestBuffer(t)

	if err := store.Enqueue(Item{Entity: EntityTasks, Data: json.RawMessage(`[]`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := store.Enqueue(Item{Entity: EntityTasks, Data: json.RawMessage(`[{"id":"1"}]`)}); err != nil {
		t.Fatalf("enqueue newer: %v", err)
	}
	if err := store.Enqueue(Item{Entity: EntityTheme, Data: json.RawMessage(`true`)}); err != nil {
		t.Fatalf("enqueue theme: %v", err)
	}

	size, err := store.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != 2 {
		t.Fatalf("expected one item per entity, got %d", size)
	}

	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	for _, item := range items {
		if item.Entity == EntityTasks && string(item.Data) != `[{"id":"1"}]` {
			t.Fatalf("older snapshot survived: %s", item.Data)
		}
	}
}

func TestRemoveAndRequeue(t *testing.T) {
	store := openTestBuffer(t)

	if err := store.Enqueue(Item{Entity: EntityCategories, Data: json.RawMessage(`["Work"]`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	items, err := store.GetBatch(0)
	if err != nil || len(items) != 1 {
		t.Fatalf("batch: %v (%d items)", err, len(items))
	}

	item := items[0]
	item.Retries++
	if err := store.Requeue(item); err != nil {
		t.Fatalf("requeue: %v", err)
	}
	items, _ = store.GetBatch(0)
	if len(items) != 1 || items[0].Retries != 1 {
		t.Fatalf("requeue should replace the item: %#v", items)
	}

	if err := store.Remove(items[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if size, _ := store.Size(); size != 0 {
		t.Fatalf("expected empty buffer, got %d", size)
	}
}

func TestRemoveByIDAndCleanup(t *testing.T) {
	store := openTestBuffer(t)

	old := Item{Entity: EntityTheme, Data: json.RawMessage(`false`), Timestamp: time.Now().Add(-48 * time.Hour)}
	if err := store.Enqueue(old); err != nil {
		t.Fatalf("enqueue old: %v", err)
	}
	if err := store.Enqueue(Item{Entity: EntityTasks, Data: json.RawMessage(`[]`)}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if size, _ := store.Size(); size != 1 {
		t.Fatalf("cleanup should drop the old item, size=%d", size)
	}

	if err := store.RemoveByID(EntityTasks); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if size, _ := store.Size(); size != 0 {
		t.Fatalf("expected empty buffer, got %d", size)
	}
}

func TestCleanupRemovesAdjacentStaleItems(t *testing.T) {
	store := openTestBuffer(t)

	old := time.Now().Add(-48 * time.Hour)
	for i, entity := range []string{EntityTasks, EntityTheme, EntityCategories} {
		item := Item{Entity: entity, Data: json.RawMessage(`null`), Priority: 1, Timestamp: old.Add(time.Duration(i) * time.Second)}
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("enqueue %s: %v", entity, err)
		}
	}
	if err := store.Enqueue(Item{ID: "fresh", Entity: EntityTasks, Data: json.RawMessage(`[]`), Priority: 1}); err != nil {
		t.Fatalf("enqueue fresh: %v", err)
	}

	if err := store.Cleanup(time.Now().Add(-24 * time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	items, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(items) != 1 || items[0].ID != "fresh" {
		t.Fatalf("every stale item should be removed, left %#v", items)
	}
}
