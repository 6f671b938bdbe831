package chat

import "time"

// Session captures a transient anonymous assistant conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is the render-ready view of a session: its transcript plus the
// typing indicator flag.
type Snapshot struct {
	Session  Session   `json:"session"`
	Messages []Message `json:"messages"`
	Pending  bool      `json:"pending"`
}
