package domain

import (
	"testing"
	"time"
)

func TestParsePriority(t *testing.T) {
	for input, want := range map[string]Priority{
		"1": PriorityLow, "low": PriorityLow,
		"2": PriorityMedium, "Medium": PriorityMedium,
		"3": PriorityHigh, "high": PriorityHigh,
	} {
		got, err := ParsePriority(input)
		if err != nil || got != want {
			t.Fatalf("%q: got %v (%v), want %v", input, got, err, want)
		}
	}
	if _, err := ParsePriority("4"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected invalid priority error, got %v", err)
	}
	if Priority(0).Valid() || !PriorityHigh.Valid() {
		t.Fatalf("unexpected Valid results")
	}
}

func TestCloneDoesNotShareDueDate(t *testing.T) {
	due := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	orig := Task{ID: "1", DueAt: &due}
	clone := orig.Clone()
	*clone.DueAt = clone.DueAt.Add(time.Hour)
	if !orig.DueAt.Equal(due) {
		t.Fatalf("clone shares due date pointer")
	}
}

func TestSameDueDate(t *testing.T) {
	a := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("X", 3600))
	if !SameDueDate(&Task{DueAt: &a}, &Task{DueAt: &b}) {
		t.Fatalf("same instant in different zones should compare equal")
	}
	if !SameDueDate(&Task{}, &Task{DueAt: &time.Time{}}) {
		t.Fatalf("nil and zero due dates both mean none")
	}
	if SameDueDate(&Task{DueAt: &a}, &Task{}) {
		t.Fatalf("due date vs none must differ")
	}
}
