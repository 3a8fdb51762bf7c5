package activity

import "time"

// Entry is one line of a task's audit trail.
type Entry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}
