package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatService "github.com/zhouzirui/portfolio-desk/backend/internal/service/chat"
	"github.com/zhouzirui/portfolio-desk/backend/pkg/utils"
)

// Handler 投资助手会话的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/sessions", h.handleCreateSession)
	r.Get("/chat/sessions/{sessionID}", h.handleGetSession)
	r.Delete("/chat/sessions/{sessionID}", h.handleCloseSession)
	r.Post("/chat/sessions/{sessionID}/messages", h.handleSubmit)
}

// handleCreateSession 创建会话，返回带问候语的记录
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, snapshot)
}

// handleGetSession 返回会话记录与等待状态
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.chatSvc.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snapshot)
}

// handleCloseSession 销毁会话并取消尚未送达的回复
func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		RespondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmit 提交问题，空白内容被静默忽略
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message, accepted, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Text)
	if err != nil {
		RespondServiceError(w, err)
		return
	}
	if !accepted {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"accepted": false})
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, map[string]any{
		"accepted": true,
		"message":  message,
	})
}

// RespondServiceError 将会话错误映射为HTTP状态码
func RespondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, chatService.ErrSessionClosed):
		utils.RespondError(w, http.StatusGone, err.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
