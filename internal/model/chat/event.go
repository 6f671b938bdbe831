package chat

// Stream event types pushed to SSE and WebSocket subscribers.
const (
	EventMessage = "message"
	EventTyping  = "typing"
	EventClosed  = "closed"
)

// StreamEvent notifies subscribers of a transcript change.
type StreamEvent struct {
	Type      string   `json:"type"`
	SessionID string   `json:"sessionId"`
	Message   *Message `json:"message,omitempty"`
	Pending   bool     `json:"pending"`
}
