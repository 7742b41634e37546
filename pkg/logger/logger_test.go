package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithRequestIDAddsField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithRequestID(ctx, base).Info("hello")
	WithRequestID(context.Background(), base).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-42" {
		t.Fatalf("expected request id field, got %v", got)
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Fatalf("plain entry should not carry a request id")
	}
	if RequestID(ctx) != "req-42" {
		t.Fatalf("RequestID lookup failed")
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "nonsense", Encoding: "console"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if log.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("invalid level should fall back to info")
	}
	if !log.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("info should be enabled")
	}
}
