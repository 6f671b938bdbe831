package chat

import (
	"context"
	"math/rand"

	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
)

// Responder produces the assistant's reply to a query.
type Responder interface {
	Respond(ctx context.Context, history []chat.Message, query string) (string, error)
}

// ScriptedResponder answers with a uniformly random entry of a fixed pool,
// with replacement. It ignores the query.
type ScriptedResponder struct {
	pool []string
	intn func(n int) int
}

// NewScriptedResponder returns a responder drawing from pool.
func NewScriptedResponder(pool []string) *ScriptedResponder {
	return &ScriptedResponder{
		pool: append([]string(nil), pool...),
		intn: rand.Intn,
	}
}

// Pick returns one pool entry, or "" when the pool is empty.
func (r *ScriptedResponder) Pick() string {
	if len(r.pool) == 0 {
		return ""
	}
	return r.pool[r.intn(len(r.pool))]
}

// Respond implements Responder.
func (r *ScriptedResponder) Respond(_ context.Context, _ []chat.Message, _ string) (string, error) {
	return r.Pick(), nil
}

// Pool returns a copy of the canned responses.
func (r *ScriptedResponder) Pool() []string {
	return append([]string(nil), r.pool...)
}
