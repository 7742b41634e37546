package domain

import (
	"fmt"
	"strings"
)

// CompletionFilter restricts the visible tasks by completion state.
type CompletionFilter string

const (
	FilterAll       CompletionFilter = "all"
	FilterActive    CompletionFilter = "active"
	FilterCompleted CompletionFilter = "completed"
)

// CategoryAll is the category filter value that disables category filtering.
const CategoryAll = "All"

// ParseCompletionFilter maps user input onto a CompletionFilter, case-insensitively.
func ParseCompletionFilter(value string) (CompletionFilter, error) {
	switch CompletionFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	}
	return "", WrapError(ErrCodeInvalid, "invalid completion filter", fmt.Errorf("%q", value))
}

// Selection is the ephemeral view state: it is never persisted.
type Selection struct {
	Completion  CompletionFilter `json:"completion"`
	SearchQuery string           `json:"search_query"`
	Category    string           `json:"category"`
}

// DefaultSelection shows every task.
func DefaultSelection() Selection {
	return Selection{Completion: FilterAll, Category: CategoryAll}
}

func (s Selection) matchesSearch(t *Task) bool {
	if s.SearchQuery == "" {
		return true
	}
	q := strings.ToLower(s.SearchQuery)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

func (s Selection) matchesCategory(t *Task) bool {
	if s.Category == "" || s.Category == CategoryAll {
		return true
	}
	return t.Category == s.Category
}

func (s Selection) matchesCompletion(t *Task) bool {
	switch s.Completion {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Matches reports whether t survives all three predicates.
func (s Selection) Matches(t *Task) bool {
	return s.matchesSearch(t) && s.matchesCategory(t) && s.matchesCompletion(t)
}

// FilterTasks applies search, category and completion predicates in that order.
// The output keeps the input order and holds copies of the surviving tasks.
func FilterTasks(tasks []Task, sel Selection) []Task {
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		if !sel.matchesSearch(&tasks[i]) {
			continue
		}
		if !sel.matchesCategory(&tasks[i]) {
			continue
		}
		if !sel.matchesCompletion(&tasks[i]) {
			continue
		}
		out = append(out, tasks[i].Clone())
	}
	return out
}
