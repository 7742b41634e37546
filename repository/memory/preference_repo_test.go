package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/fastygo/todo/domain"
)

func TestStoreKindsAndFailures(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.SetStringList(ctx, "categories", []string{"a", "b"}); err != nil {
		t.Fatalf("set list: %v", err)
	}
	got, err := s.GetStringList(ctx, "categories")
	if err != nil || !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("get list: %v (%v)", got, err)
	}
	got[0] = "mutated"
	if again, _ := s.GetStringList(ctx, "categories"); again[0] != "a" {
		t.Fatalf("returned list must be a copy")
	}
	if _, err := s.GetBool(ctx, "categories"); !errors.Is(err, domain.ErrPreferenceNotFound) {
		t.Fatalf("reading with the wrong kind should be not found, got %v", err)
	}

	boom := errors.New("boom")
	s.SetFailWrites(boom)
	if err := s.SetBool(ctx, "isDarkMode", true); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	s.SetFailWrites(nil)
	if err := s.SetBool(ctx, "isDarkMode", true); err != nil {
		t.Fatalf("set bool: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Fatalf("ping after close should fail")
	}
}
