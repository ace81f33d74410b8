package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/handlers/dto"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/internal/models"
)

type ChatRelay interface {
	Relay(ctx context.Context, msg models.InboundMessage) (*models.ChatMessage, error)
	ListHistory(ctx context.Context, roomID string) ([]models.ChatMessage, error)
}

type HTTPMessageHandler struct {
	chat ChatRelay
}

func NewHTTPMessageHandler(chat ChatRelay) *HTTPMessageHandler {
	return &HTTPMessageHandler{chat: chat}
}

// GetRoomMessages получает историю сообщений комнаты, старые первыми
func (h *HTTPMessageHandler) GetRoomMessages(c *gin.Context) {
	messages, err := h.chat.ListHistory(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, messages)
}

// SendMessage отправляет сообщение через HTTP (альтернатива WebSocket).
// Отправитель - текущий пользователь.
func (h *HTTPMessageHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	message, err := h.chat.Relay(c.Request.Context(), models.InboundMessage{
		ChatRoomID: c.Param("roomId"),
		Sender:     middleware.UserID(c),
		Content:    req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, message)
}
