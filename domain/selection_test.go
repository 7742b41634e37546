package domain

import "testing"

func sampleTasks() []Task {
	return []Task{
		{ID: "1", Title: "Buy milk", Category: "Shopping", Priority: PriorityLow},
		{ID: "2", Title: "Report", Description: "quarterly MILKSHAKE numbers", Category: "Work", Completed: true},
		{ID: "3", Title: "Run", Category: "Health"},
		{ID: "4", Title: "Groceries", Category: "Shopping", Completed: true},
	}
}

func ids(tasks []Task) string {
	out := ""
	for _, t := range tasks {
		out += t.ID
	}
	return out
}

func TestFilterTasks(t *testing.T) {
	cases := []struct {
		name string
		sel  Selection
		want string
	}{
		{"default shows everything", DefaultSelection(), "1234"},
		{"empty category means all", Selection{Completion: FilterAll}, "1234"},
		{"active", Selection{Completion: FilterActive, Category: CategoryAll}, "13"},
		{"completed", Selection{Completion: FilterCompleted, Category: CategoryAll}, "24"},
		{"category", Selection{Completion: FilterAll, Category: "Shopping"}, "14"},
		{"search is case-insensitive over title and description", Selection{Completion: FilterAll, Category: CategoryAll, SearchQuery: "Milk"}, "12"},
		{"all predicates", Selection{Completion: FilterCompleted, Category: "Work", SearchQuery: "milk"}, "2"},
		{"no match", Selection{Completion: FilterActive, Category: "Work"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ids(FilterTasks(sampleTasks(), tc.sel)); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFilterTasksMatchesPredicate(t *testing.T) {
	tasks := sampleTasks()
	sel := Selection{Completion: FilterActive, Category: "Shopping", SearchQuery: "buy"}
	visible := FilterTasks(tasks, sel)
	for i := range tasks {
		matched := sel.Matches(&tasks[i])
		found := false
		for _, v := range visible {
			if v.ID == tasks[i].ID {
				found = true
			}
		}
		if matched != found {
			t.Fatalf("task %s: Matches=%v but visible=%v", tasks[i].ID, matched, found)
		}
	}
}

func TestFilterTasksReturnsCopies(t *testing.T) {
	tasks := sampleTasks()
	visible := FilterTasks(tasks, DefaultSelection())
	visible[0].Title = "changed"
	if tasks[0].Title != "Buy milk" {
		t.Fatalf("filtered view must not alias the input")
	}
}

func TestParseCompletionFilter(t *testing.T) {
	for input, want := range map[string]CompletionFilter{
		"":          FilterAll,
		"all":       FilterAll,
		" Active ":  FilterActive,
		"COMPLETED": FilterCompleted,
	} {
		got, err := ParseCompletionFilter(input)
		if err != nil || got != want {
			t.Fatalf("%q: got %q (%v), want %q", input, got, err, want)
		}
	}
	if _, err := ParseCompletionFilter("later"); !IsDomainError(err, ErrCodeInvalid) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}
