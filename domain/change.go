package domain

// ChangeKind names the state transition a subscriber is told about.
type ChangeKind string

const (
	ChangeLoaded          ChangeKind = "loaded"
	ChangeTaskAdded       ChangeKind = "task_added"
	ChangeTaskUpdated     ChangeKind = "task_updated"
	ChangeTaskDeleted     ChangeKind = "task_deleted"
	ChangeTaskToggled     ChangeKind = "task_toggled"
	ChangeSelection       ChangeKind = "selection"
	ChangeCategoryAdded   ChangeKind = "category_added"
	ChangeCategoryRemoved ChangeKind = "category_removed"
	ChangeTheme           ChangeKind = "theme"
)

// Change is emitted after every state transition of the task store.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	TaskID   string     `json:"task_id,omitempty"`
	Category string     `json:"category,omitempty"`
	Revision uint64     `json:"revision"`
}
