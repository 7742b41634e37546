package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entities a buffered snapshot can hold. Each entity keeps at most one item
// in the buffer: a newer snapshot replaces the older one.
const (
	EntityTasks      = "tasks"
	EntityTheme      = "theme"
	EntityCategories = "categories"
)

// Item is a state snapshot whose write to the preference store failed.
type Item struct {
	ID        string          `json:"id"`
	Entity    string          `json:"entity"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = i.Entity
	}
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		i.Priority = 3
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
