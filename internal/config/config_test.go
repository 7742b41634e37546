package config

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("TASK_CATEGORIES", "")
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SYNC_INTERVAL_SECONDS", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendBolt {
		t.Fatalf("expected bolt backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Address() != "127.0.0.1:8080" {
		t.Fatalf("unexpected address %s", cfg.Address())
	}
	if cfg.Buffer.SyncInterval != 30*time.Second {
		t.Fatalf("unexpected sync interval %v", cfg.Buffer.SyncInterval)
	}
	if !strings.HasPrefix(cfg.Database.URL, "postgres://") {
		t.Fatalf("expected derived postgres url, got %q", cfg.Database.URL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("TASK_CATEGORIES", " Home, Work ,,Errands")
	t.Setenv("TASK_DEFAULT_CATEGORY", "Home")
	t.Setenv("SYNC_INTERVAL_SECONDS", "5")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "250ms")
	t.Setenv("NOTIFICATIONS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Fatalf("backend should be lower-cased, got %q", cfg.Storage.Backend)
	}
	if !reflect.DeepEqual(cfg.Tasks.Categories, []string{"Home", "Work", "Errands"}) {
		t.Fatalf("unexpected categories %#v", cfg.Tasks.Categories)
	}
	if cfg.Buffer.SyncInterval != 5*time.Second {
		t.Fatalf("integer seconds should parse, got %v", cfg.Buffer.SyncInterval)
	}
	if cfg.Context.RequestTimeout != 250*time.Millisecond {
		t.Fatalf("duration strings should parse, got %v", cfg.Context.RequestTimeout)
	}
	if cfg.Notifications.Enabled {
		t.Fatalf("expected notifications disabled")
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "floppy")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown backend error")
	}

	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected redis url requirement")
	}

	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TASK_CATEGORIES", "A,B")
	t.Setenv("TASK_DEFAULT_CATEGORY", "C")
	if _, err := Load(); err == nil {
		t.Fatalf("expected default category validation error")
	}
}

func TestLoadRejectsFilterSentinelCategory(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("TASK_CATEGORIES", "Work,All")
	t.Setenv("TASK_DEFAULT_CATEGORY", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for an All category")
	}

	t.Setenv("TASK_CATEGORIES", "")
	t.Setenv("TASK_DEFAULT_CATEGORY", "All")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for All as default category")
	}
}
