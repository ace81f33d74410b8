package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/models"
	"github.com/thereayou/matchmaker/internal/pubsub"
)

const defaultPublishTimeout = 2 * time.Second

// ChatService сохраняет входящие сообщения и рассылает их через шину
type ChatService struct {
	store          database.ChatStore
	bus            pubsub.Bus
	clock          Clock
	publishTimeout time.Duration
}

type ChatOption func(*ChatService)

func WithClock(clock Clock) ChatOption {
	return func(s *ChatService) { s.clock = clock }
}

func WithPublishTimeout(d time.Duration) ChatOption {
	return func(s *ChatService) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

func NewChatService(store database.ChatStore, bus pubsub.Bus, opts ...ChatOption) *ChatService {
	s := &ChatService{
		store:          store,
		bus:            bus,
		clock:          NewMonotonicClock(),
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Relay ставит время, сохраняет и публикует msg, затем возвращает
// сохраненную запись. Несохраненное сообщение не публикуется. Ошибка
// публикации только логируется.
func (s *ChatService) Relay(ctx context.Context, msg models.InboundMessage) (*models.ChatMessage, error) {
	roomID := strings.TrimSpace(msg.ChatRoomID)
	if roomID == "" {
		return nil, apperrors.New(apperrors.CodeChatRoomEmpty, "chat room id is required")
	}

	stored := &models.ChatMessage{
		ID:         uuid.NewString(),
		ChatRoomID: roomID,
		Sender:     msg.Sender,
		Content:    msg.Content,
		Timestamp:  s.clock.Now(),
	}
	if err := s.store.SaveMessage(ctx, stored); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "failed to save message", err)
	}

	s.publish(ctx, stored)
	return stored, nil
}

func (s *ChatService) publish(ctx context.Context, msg *models.ChatMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode chat message", "message_id", msg.ID, "error", err)
		return
	}

	// Контекст запроса может отмениться сразу после ответа отправителю
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.bus.Publish(pubCtx, pubsub.RoomTopic(msg.ChatRoomID), payload); err != nil {
		slog.WarnContext(ctx, "failed to publish chat message",
			"room_id", msg.ChatRoomID, "message_id", msg.ID, "error", err)
	}
}

// ListHistory - сообщения комнаты, старые первыми
func (s *ChatService) ListHistory(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, apperrors.New(apperrors.CodeChatRoomEmpty, "chat room id is required")
	}

	messages, err := s.store.GetRoomMessages(ctx, roomID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "failed to load messages", err)
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}
