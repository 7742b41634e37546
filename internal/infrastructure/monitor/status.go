package monitor

import "time"

type Status struct {
	Backend         string    `json:"backend"`
	BackendOnline   bool      `json:"backend_online"`
	Buffer          bool      `json:"buffer"`
	BufferSize      int       `json:"buffer_size"`
	LastWriteFailed bool      `json:"last_write_failed"`
	LastCheck       time.Time `json:"last_check"`
}
