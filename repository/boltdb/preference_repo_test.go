package boltdb

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fastygo/todo/domain"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs", "todo.db")
	store, err := Open(path, "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, path
}

func TestValuesSurviveReopen(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()

	if err := store.SetStringList(ctx, "tasks", []string{`{"id":"1"}`, `{"id":"2"}`}); err != nil {
		t.Fatalf("set list: %v", err)
	}
	if err := store.SetBool(ctx, "isDarkMode", true); err != nil {
		t.Fatalf("set bool: %v", err)
	}
	if err := store.SetString(ctx, "name", "inbox"); err != nil {
		t.Fatalf("set string: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path, "")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	list, err := reopened.GetStringList(ctx, "tasks")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if !reflect.DeepEqual(list, []string{`{"id":"1"}`, `{"id":"2"}`}) {
		t.Fatalf("unexpected list %#v", list)
	}
	dark, err := reopened.GetBool(ctx, "isDarkMode")
	if err != nil || !dark {
		t.Fatalf("expected dark mode true, got %v (%v)", dark, err)
	}
	name, err := reopened.GetString(ctx, "name")
	if err != nil || name != "inbox" {
		t.Fatalf("unexpected string %q (%v)", name, err)
	}
}

func TestEmptyListIsKept(t *testing.T) {
	store, _ := openTestStore(t)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	if err := store.SetStringList(ctx, "categories", nil); err != nil {
		t.Fatalf("set list: %v", err)
	}
	list, err := store.GetStringList(ctx, "categories")
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %#v", list)
	}
}

func TestWrongKindReadsAsMissing(t *testing.T) {
	store, _ := openTestStore(t)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	if err := store.SetString(ctx, "k", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.GetBool(ctx, "k"); !errors.Is(err, domain.ErrPreferenceNotFound) {
		t.Fatalf("expected not found for mismatched kind, got %v", err)
	}
	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.GetString(ctx, "k"); !errors.Is(err, domain.ErrPreferenceNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestPingAfterClose(t *testing.T) {
	store, _ := openTestStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail on closed store")
	}
}
