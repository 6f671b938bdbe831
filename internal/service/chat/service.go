package chat

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// DefaultReplyDelay is the simulated thinking time before a reply lands.
const DefaultReplyDelay = 1500 * time.Millisecond

// DefaultClosedRetention is how long a closed session keeps answering with
// ErrSessionClosed before it is forgotten.
const DefaultClosedRetention = 5 * time.Minute

// DefaultMaxSessions caps the number of sessions held in memory.
const DefaultMaxSessions = 1000

const subscriberBuffer = 32

// Config configures the assistant simulator.
type Config struct {
	// Greeting opens every new transcript. Empty disables it.
	Greeting string
	// Responses is the canned reply pool.
	Responses []string
	// ReplyDelay is the fixed latency before a reply is appended.
	ReplyDelay time.Duration
	// Responder, when set, is consulted before the canned pool. Its errors
	// fall back to a canned reply.
	Responder Responder
	// ClosedRetention is how long a closed session is kept before eviction.
	ClosedRetention time.Duration
	// MaxSessions caps live plus retained sessions; the oldest is evicted
	// when a new session would exceed it.
	MaxSessions int
}

// Service owns every assistant session: its State, its pending reply timers
// and its subscribers.
type Service struct {
	mu        sync.Mutex
	sessions  map[string]*session
	order     []string
	greeting  string
	delay     time.Duration
	retention time.Duration
	maxSess   int
	scripted  *ScriptedResponder
	responder Responder
	now       func() time.Time
}

type session struct {
	info      chat.Session
	state     State
	ctx       context.Context
	cancel    context.CancelFunc
	timers    map[uint64]*time.Timer
	nextTimer uint64
	subs      map[chan chat.StreamEvent]struct{}
	evict     *time.Timer
}

// NewService bootstraps the in-memory assistant simulator.
func NewService(cfg Config) *Service {
	delay := cfg.ReplyDelay
	if delay < 0 {
		delay = 0
	}
	retention := cfg.ClosedRetention
	if retention <= 0 {
		retention = DefaultClosedRetention
	}
	maxSess := cfg.MaxSessions
	if maxSess <= 0 {
		maxSess = DefaultMaxSessions
	}
	return &Service{
		sessions:  make(map[string]*session),
		greeting:  cfg.Greeting,
		delay:     delay,
		retention: retention,
		maxSess:   maxSess,
		scripted:  NewScriptedResponder(cfg.Responses),
		responder: cfg.Responder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ReplyDelay returns the configured simulated latency.
func (s *Service) ReplyDelay() time.Duration {
	return s.delay
}

// CreateSession provisions an anonymous session whose transcript starts with
// the greeting.
func (s *Service) CreateSession(_ context.Context) (chat.Snapshot, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sess := &session{
		info: chat.Session{
			ID:        uuid.NewString(),
			CreatedAt: s.now(),
		},
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[uint64]*time.Timer),
		subs:   make(map[chan chat.StreamEvent]struct{}),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.maxSess {
		oldest, ok := s.sessions[s.order[0]]
		if !ok {
			s.order = s.order[1:]
			continue
		}
		log.Printf("[chat] session cap reached, evicting session=%s", oldest.info.ID)
		s.evictLocked(oldest)
	}
	s.sessions[sess.info.ID] = sess
	s.order = append(s.order, sess.info.ID)
	if s.greeting != "" {
		msg := s.newMessageLocked(sess, chat.SenderBot, s.greeting)
		sess.state = Update(sess.state, Greeted{Message: msg})
	}
	return snapshotOf(sess), nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return sess.info, nil
}

// Snapshot returns the transcript and the pending flag of a session.
func (s *Service) Snapshot(_ context.Context, sessionID string) (chat.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return chat.Snapshot{}, err
	}
	return snapshotOf(sess), nil
}

// LoadTranscript returns the messages of a session in creation order.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	snap, err := s.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return snap.Messages, nil
}

// Submit appends the user's query and schedules exactly one reply after the
// reply delay. A blank query is ignored: accepted is false and the transcript
// is left untouched.
func (s *Service) Submit(_ context.Context, sessionID, text string) (chat.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return chat.Message{}, false, err
	}
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, false, nil
	}

	msg := s.newMessageLocked(sess, chat.SenderUser, text)
	s.applyLocked(sess, UserSubmitted{Message: msg})
	s.scheduleReplyLocked(sess, text)
	return msg, true, nil
}

// Subscribe streams transcript changes of a session. The returned cancel func
// is safe to call more than once. The channel is closed when the session is
// closed, when cancel is called, or when the subscriber falls behind.
func (s *Service) Subscribe(sessionID string) (<-chan chat.StreamEvent, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(sessionID)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan chat.StreamEvent, subscriberBuffer)
	sess.subs[ch] = struct{}{}

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := sess.subs[ch]; ok {
			delete(sess.subs, ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// Close disposes a session: outstanding reply timers are stopped and any reply
// that is already being produced is discarded. Closing twice is a no-op.
func (s *Service) Close(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.closeLocked(sess)
	return nil
}

// Active reports whether the session exists and is still open.
func (s *Service) Active(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.lookupLocked(sessionID)
	return err == nil
}

// Shutdown closes every session.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		s.closeLocked(sess)
	}
}

func (s *Service) lookupLocked(sessionID string) (*session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.state.Closed {
		return nil, ErrSessionClosed
	}
	return sess, nil
}

func (s *Service) newMessageLocked(sess *session, sender chat.Sender, content string) chat.Message {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return chat.Message{
		ID:        id.String(),
		SessionID: sess.info.ID,
		Seq:       len(sess.state.Messages),
		Sender:    sender,
		Content:   content,
		CreatedAt: s.now(),
	}
}

func (s *Service) scheduleReplyLocked(sess *session, query string) {
	token := sess.nextTimer
	sess.nextTimer++

	history := sess.state.Messages
	sess.timers[token] = time.AfterFunc(s.delay, func() {
		s.deliver(sess, token, history, query)
	})
}

// deliver runs on the timer goroutine. The reply is produced without holding
// the lock so a slow Responder does not stall other sessions.
func (s *Service) deliver(sess *session, token uint64, history []chat.Message, query string) {
	s.mu.Lock()
	closed := sess.state.Closed
	s.mu.Unlock()
	if closed {
		return
	}

	content := s.reply(sess.ctx, history, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(sess.timers, token)
	if sess.state.Closed {
		log.Printf("[chat] discarding late reply for closed session=%s", sess.info.ID)
		return
	}

	msg := s.newMessageLocked(sess, chat.SenderBot, content)
	s.applyLocked(sess, BotReplied{Message: msg})
}

func (s *Service) reply(ctx context.Context, history []chat.Message, query string) string {
	if s.responder != nil {
		content, err := s.responder.Respond(ctx, history, query)
		if err == nil && strings.TrimSpace(content) != "" {
			return content
		}
		if err != nil && ctx.Err() == nil {
			log.Printf("[chat] responder failed, using canned reply: %v", err)
		}
	}
	return s.scripted.Pick()
}

func (s *Service) applyLocked(sess *session, ev Event) {
	sess.state = Update(sess.state, ev)

	switch ev := ev.(type) {
	case UserSubmitted:
		s.publishLocked(sess, messageEvent(sess, ev.Message))
		s.publishLocked(sess, typingEvent(sess))
	case BotReplied:
		s.publishLocked(sess, messageEvent(sess, ev.Message))
		s.publishLocked(sess, typingEvent(sess))
	case SessionClosed:
		s.publishLocked(sess, chat.StreamEvent{Type: chat.EventClosed, SessionID: sess.info.ID})
		for ch := range sess.subs {
			delete(sess.subs, ch)
			close(ch)
		}
	}
}

func (s *Service) publishLocked(sess *session, ev chat.StreamEvent) {
	for ch := range sess.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("[chat] dropping slow subscriber for session=%s", sess.info.ID)
			delete(sess.subs, ch)
			close(ch)
		}
	}
}

func (s *Service) closeLocked(sess *session) {
	if sess.state.Closed {
		return
	}
	for token, timer := range sess.timers {
		timer.Stop()
		delete(sess.timers, token)
	}
	sess.cancel()
	s.applyLocked(sess, SessionClosed{})
	sess.evict = time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.evictLocked(sess)
	})
}

// evictLocked closes sess if needed and forgets it.
func (s *Service) evictLocked(sess *session) {
	if current, ok := s.sessions[sess.info.ID]; !ok || current != sess {
		return
	}
	s.closeLocked(sess)
	if sess.evict != nil {
		sess.evict.Stop()
	}
	delete(s.sessions, sess.info.ID)
	if i := slices.Index(s.order, sess.info.ID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func messageEvent(sess *session, msg chat.Message) chat.StreamEvent {
	return chat.StreamEvent{
		Type:      chat.EventMessage,
		SessionID: sess.info.ID,
		Message:   &msg,
		Pending:   sess.state.Pending(),
	}
}

func typingEvent(sess *session) chat.StreamEvent {
	return chat.StreamEvent{
		Type:      chat.EventTyping,
		SessionID: sess.info.ID,
		Pending:   sess.state.Pending(),
	}
}

func snapshotOf(sess *session) chat.Snapshot {
	messages := make([]chat.Message, len(sess.state.Messages))
	copy(messages, sess.state.Messages)
	return chat.Snapshot{
		Session:  sess.info,
		Messages: messages,
		Pending:  sess.state.Pending(),
	}
}
