package domain

import (
	"fmt"
	"time"
)

// Priority ranks a task. The numeric values are part of the persisted format.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority accepts either the numeric form ("1".."3") or the name.
func ParsePriority(value string) (Priority, error) {
	switch value {
	case "1", "low", "Low":
		return PriorityLow, nil
	case "2", "medium", "Medium":
		return PriorityMedium, nil
	case "3", "high", "High":
		return PriorityHigh, nil
	}
	return 0, WrapError(ErrCodeInvalid, "invalid priority", fmt.Errorf("%q", value))
}

// Task is a single to-do item. The JSON tags define the persisted record shape.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"isCompleted"`
	DueAt       *time.Time `json:"dueDate"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Completed
}

// HasDueDate reports whether the task carries a due timestamp.
func (t *Task) HasDueDate() bool {
	return t != nil && t.DueAt != nil && !t.DueAt.IsZero()
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueAt != nil {
		due := *t.DueAt
		t.DueAt = &due
	}
	return t
}

// SameDueDate compares the due timestamps of two tasks, treating nil as "no due date".
func SameDueDate(a, b *Task) bool {
	if !a.HasDueDate() || !b.HasDueDate() {
		return a.HasDueDate() == b.HasDueDate()
	}
	return a.DueAt.Equal(*b.DueAt)
}
