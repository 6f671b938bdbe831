package chat

import "github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"

// State is the explicit per-session conversation model. It is treated as a
// value: Update returns a new State and never mutates the one it was given.
type State struct {
	Messages    []chat.Message
	Outstanding int
	Closed      bool
}

// Pending reports whether a simulated reply is still on its way, i.e. whether
// the typing indicator should be shown.
func (s State) Pending() bool {
	return s.Outstanding > 0
}

// Event is an input to Update.
type Event interface {
	event()
}

// Greeted seeds the transcript with the assistant's opening line.
type Greeted struct{ Message chat.Message }

// UserSubmitted records an accepted user query and opens a pending reply.
type UserSubmitted struct{ Message chat.Message }

// BotReplied records a simulated reply and settles one pending reply.
type BotReplied struct{ Message chat.Message }

// SessionClosed disposes the session. Later events are ignored.
type SessionClosed struct{}

func (Greeted) event()       {}
func (UserSubmitted) event() {}
func (BotReplied) event()    {}
func (SessionClosed) event() {}

// Update applies ev to s and returns the resulting state.
func Update(s State, ev Event) State {
	if s.Closed {
		return s
	}

	switch ev := ev.(type) {
	case Greeted:
		s.Messages = appendMessage(s.Messages, ev.Message)
	case UserSubmitted:
		s.Messages = appendMessage(s.Messages, ev.Message)
		s.Outstanding++
	case BotReplied:
		s.Messages = appendMessage(s.Messages, ev.Message)
		if s.Outstanding > 0 {
			s.Outstanding--
		}
	case SessionClosed:
		s.Closed = true
		s.Outstanding = 0
	}
	return s
}

func appendMessage(messages []chat.Message, msg chat.Message) []chat.Message {
	out := make([]chat.Message, len(messages), len(messages)+1)
	copy(out, messages)
	return append(out, msg)
}
