package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatHandler "github.com/zhouzirui/portfolio-desk/backend/internal/handler/chat"
	"github.com/zhouzirui/portfolio-desk/backend/internal/model/chat"
	chatService "github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
)

const (
	// 书写超时
	writeWait = 10 * time.Second

	// pong 等待时间
	pongWait = 60 * time.Second

	// ping 间隔，必须小于 pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
)

// 入站消息类型
const (
	inboundMessage = "message"
	inboundClose   = "close"
)

// 出站消息类型，其余类型沿用 chat.StreamEvent
const (
	outboundSnapshot = "snapshot"
	outboundIgnored  = "ignored"
	outboundError    = "error"
)

// Handler 投资助手 WebSocket 处理器
type Handler struct {
	chatSvc  *chatService.Service
	upgrader websocket.Upgrader
}

// New 创建 WebSocket 处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/sessions/{sessionID}/ws", h.handleWebSocket)
}

type inbound struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	conn      *websocket.Conn
	sessionID string
	events    <-chan chat.StreamEvent
	active    func() bool
	replies   chan outgoingMessage
	done      chan struct{}
	stopped   chan struct{}
}

// handleWebSocket 升级连接并在读写两个循环之间转发会话事件
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	events, cancel, err := h.chatSvc.Subscribe(sessionID)
	if err != nil {
		chatHandler.RespondServiceError(w, err)
		return
	}
	defer cancel()

	snapshot, err := h.chatSvc.Snapshot(r.Context(), sessionID)
	if err != nil {
		chatHandler.RespondServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] new connection for session=%s", sessionID)

	c := &client{
		conn:      conn,
		sessionID: sessionID,
		events:    events,
		active:    func() bool { return h.chatSvc.Active(sessionID) },
		replies:   make(chan outgoingMessage, 8),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	c.replies <- newOutgoing(outboundSnapshot, sessionID, snapshot)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(c.stopped)
		c.writePump(len(snapshot.Messages))
	}()

	c.readPump(r.Context(), h.chatSvc)
	close(c.done)
	wg.Wait()
	log.Printf("[ws] connection closed for session=%s", sessionID)
}

// readPump 读取客户端消息，直到连接断开
func (c *client) readPump(ctx context.Context, chatSvc *chatService.Service) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error for session=%s: %v", c.sessionID, err)
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.reply(newOutgoing(outboundError, c.sessionID, "invalid message"))
			continue
		}

		switch msg.Type {
		case inboundMessage:
			_, accepted, err := chatSvc.Submit(ctx, c.sessionID, msg.Text)
			if err != nil {
				c.reply(newOutgoing(outboundError, c.sessionID, err.Error()))
				continue
			}
			if !accepted {
				c.reply(newOutgoing(outboundIgnored, c.sessionID, nil))
			}
		case inboundClose:
			if err := chatSvc.Close(ctx, c.sessionID); err != nil {
				c.reply(newOutgoing(outboundError, c.sessionID, err.Error()))
			}
		default:
			c.reply(newOutgoing(outboundError, c.sessionID, "unknown message type"))
		}
	}
}

// writePump 是唯一写连接的协程
func (c *client) writePump(seen int) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.replies:
			if err := c.write(msg); err != nil {
				return
			}
		case ev, ok := <-c.events:
			if !ok {
				code, reason := closeReason(c.active())
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
				return
			}
			if ev.Type == chat.EventMessage && ev.Message != nil && ev.Message.Seq < seen {
				continue
			}
			if err := c.write(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// closeReason 区分会话已关闭与订阅者因积压被丢弃，后者可以重新连接
func closeReason(sessionActive bool) (int, string) {
	if sessionActive {
		return websocket.CloseTryAgainLater, "subscriber fell behind, reconnect"
	}
	return websocket.CloseNormalClosure, "session closed"
}

func (c *client) write(v interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) reply(msg outgoingMessage) {
	select {
	case c.replies <- msg:
	case <-c.stopped:
	}
}

func newOutgoing(kind, sessionID string, data interface{}) outgoingMessage {
	return outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}
