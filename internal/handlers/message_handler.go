package handlers

import (
	"context"

	"github.com/thereayou/matchmaker/internal/models"
	"github.com/thereayou/matchmaker/internal/websocket"
)

// MessageHandler прогоняет фреймы message через relay и подтверждает
// отправителю сохраненным сообщением. Рассылка идет через шину.
type MessageHandler struct {
	chat ChatRelay
}

func NewMessageHandler(chat ChatRelay) *MessageHandler {
	return &MessageHandler{chat: chat}
}

func (h *MessageHandler) HandleMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	if msg.Type != websocket.TypeMessage {
		return websocket.ErrInvalidMessage
	}

	stored, err := h.chat.Relay(ctx, models.InboundMessage{
		ChatRoomID: msg.ChatRoomID,
		Sender:     client.UserID,
		Content:    msg.Content,
	})
	if err != nil {
		return err
	}

	return client.SendMessage(websocket.TypeAck, stored.ChatRoomID, stored)
}
