package transport

// TaskRequest is the body of task create and update calls. Zero values for
// category and priority take the store defaults; an empty dueDate means none.
type TaskRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	DueDate     string `json:"dueDate"`
	Category    string `json:"category"`
	Priority    int    `json:"priority"`
}

// SelectionRequest updates only the fields that are present.
type SelectionRequest struct {
	Completion  *string `json:"completion"`
	SearchQuery *string `json:"search_query"`
	Category    *string `json:"category"`
}

type CategoryRequest struct {
	Label string `json:"label"`
}
