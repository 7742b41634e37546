package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fastygo/todo/internal/infrastructure/buffer"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type writeFlag bool

func (w writeFlag) LastWriteFailed() bool { return bool(w) }

func TestRefreshReportsBackendAndBuffer(t *testing.T) {
	buf, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { _ = buf.Close() })
	if err := buf.Enqueue(buffer.Item{Entity: buffer.EntityTheme, Data: []byte("true")}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	var fail error
	m := New("memory", pingFunc(func(context.Context) error { return fail }), buf, 0, nil)
	m.WatchWrites(writeFlag(true))

	if !m.IsOnline() {
		t.Fatalf("monitor should start optimistic")
	}

	m.Refresh()
	status := m.GetStatus()
	if !status.BackendOnline || !status.Buffer || status.BufferSize != 1 || !status.LastWriteFailed {
		t.Fatalf("unexpected status %#v", status)
	}

	fail = errors.New("down")
	m.Refresh()
	if m.IsOnline() {
		t.Fatalf("expected offline after failed ping")
	}
	m.Stop()
	m.Stop()
}
