package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/zhouzirui/portfolio-desk/backend/internal/handler/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	chatService "github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
	"github.com/zhouzirui/portfolio-desk/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// eventResync tells a client that fell behind to reconnect for a fresh snapshot.
const eventResync = "resync"

// Handler pushes transcript changes to browsers via Server-Sent Events.
type Handler struct {
	chatSvc   *chatService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc:   chatSvc,
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes registers the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/sessions/{sessionID}/events", h.handleEvents)
}

// handleEvents sends a snapshot first, then every message and typing change
// until the client disconnects or the session is closed.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	sessionID := chi.URLParam(r, "sessionID")

	// Subscribe before taking the snapshot so no change can slip in between;
	// messages already in the snapshot are skipped below.
	events, cancel, err := h.chatSvc.Subscribe(sessionID)
	if err != nil {
		chatHandler.RespondServiceError(w, err)
		return
	}
	defer cancel()

	snapshot, err := h.chatSvc.Snapshot(ctx, sessionID)
	if err != nil {
		chatHandler.RespondServiceError(w, err)
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	if err := utils.SendSSEEvent(w, flusher, "snapshot", snapshot); err != nil {
		return
	}
	seen := len(snapshot.Messages)

	log.Printf("[sse] opening stream for session=%s", sessionID)
	defer log.Printf("[sse] closing stream for session=%s", sessionID)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if h.chatSvc.Active(sessionID) {
					log.Printf("[sse] subscriber dropped for session=%s, asking client to resync", sessionID)
					_ = utils.SendSSEEvent(w, flusher, eventResync, map[string]string{"sessionId": sessionID})
				}
				return
			}
			if ev.Type == chat.EventMessage && ev.Message != nil && ev.Message.Seq < seen {
				continue
			}
			if err := utils.SendSSEEvent(w, flusher, ev.Type, ev); err != nil {
				log.Printf("[sse] write failed for session=%s: %v", sessionID, err)
				return
			}
			if ev.Type == chat.EventClosed {
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
