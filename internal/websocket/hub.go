package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/models"
	"github.com/thereayou/matchmaker/internal/pubsub"
	"golang.org/x/time/rate"
)

const (
	defaultMessageRate  = 5
	defaultMessageBurst = 10
)

// room - локальные участники комнаты и подписка на ее топик в шине
type room struct {
	clients map[uuid.UUID]*Client
	sub     pubsub.Subscription
}

// Hub держит локальные соединения и раздает им сообщения из шины.
// На топик комнаты подписываемся при входе первого локального клиента
// и отписываемся, когда выходит последний.
type Hub struct {
	bus pubsub.Bus

	clients map[uuid.UUID]*Client
	rooms   map[string]*room

	register   chan *Client
	unregister chan *Client

	messageRate  rate.Limit
	messageBurst int

	mu sync.RWMutex
	wg sync.WaitGroup

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

type HubOption func(*Hub)

// WithMessageRate задает лимит входящих сообщений на одно соединение
func WithMessageRate(perSecond float64, burst int) HubOption {
	return func(h *Hub) {
		if perSecond > 0 {
			h.messageRate = rate.Limit(perSecond)
		}
		if burst > 0 {
			h.messageBurst = burst
		}
	}
}

// NewHub создает новый Hub поверх шины
func NewHub(bus pubsub.Bus, opts ...HubOption) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		bus:          bus,
		clients:      make(map[uuid.UUID]*Client),
		rooms:        make(map[string]*room),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		messageRate:  defaultMessageRate,
		messageBurst: defaultMessageBurst,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run запускает hub
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub, закрывает подписки и соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	for roomID, r := range h.rooms {
		_ = r.sub.Close()
		delete(h.rooms, roomID)
	}
	for id, client := range h.clients {
		client.close()
		if client.Conn != nil {
			_ = client.Conn.Close()
		}
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.wg.Wait()
}

// Register регистрирует нового клиента
func (h *Hub) Register(client *Client) error {
	select {
	case h.register <- client:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	}
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	slog.Debug("websocket client registered", "client_id", client.ID, "user_id", client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, roomID := range client.Rooms() {
		h.removeFromRoomUnsafe(client, roomID)
	}
	delete(h.clients, client.ID)
	client.close()

	slog.Debug("websocket client unregistered", "client_id", client.ID, "user_id", client.UserID)
}

// JoinRoom добавляет клиента в комнату. Повторный вход ничего не меняет.
// Подписка на топик оформляется вне блокировки hub.
func (h *Hub) JoinRoom(client *Client, roomID string) error {
	if roomID == "" {
		return ErrRoomRequired
	}

	for {
		if h.ctx.Err() != nil {
			return ErrHubStopped
		}

		h.mu.RLock()
		_, exists := h.rooms[roomID]
		h.mu.RUnlock()

		var sub pubsub.Subscription
		if !exists {
			var err error
			sub, err = h.bus.Subscribe(h.ctx, pubsub.RoomTopic(roomID))
			if err != nil {
				return err
			}
		}

		// Комната могла опустеть, пока блокировка была снята
		if h.attach(client, roomID, sub) {
			return nil
		}
	}
}

// attach возвращает false, если hub остановлен или комната исчезла,
// а своей подписки нет
func (h *Hub) attach(client *Client, roomID string, sub pubsub.Subscription) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctx.Err() != nil {
		h.closeSpare(roomID, sub)
		return false
	}

	r, ok := h.rooms[roomID]
	switch {
	case ok:
		// Комнату успел создать другой вход
		h.closeSpare(roomID, sub)
	case sub == nil:
		return false
	default:
		r = &room{clients: make(map[uuid.UUID]*Client), sub: sub}
		h.rooms[roomID] = r

		h.wg.Add(1)
		go h.forward(roomID, sub)
	}

	if _, joined := r.clients[client.ID]; joined {
		return true
	}
	r.clients[client.ID] = client
	client.addRoom(roomID)

	// Уведомляем других участников о присоединении
	h.broadcastToRoomExcept(roomID, h.notice(TypeRoomJoin, roomID, client.UserID), client.ID)

	// Отправляем список участников новому клиенту
	h.sendRoomUsers(client, roomID)
	return true
}

func (h *Hub) closeSpare(roomID string, sub pubsub.Subscription) {
	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		slog.Warn("failed to close room subscription", "room_id", roomID, "error", err)
	}
}

// LeaveRoom удаляет клиента из комнаты
func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID string) {
	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := r.clients[client.ID]; !ok {
		return
	}

	delete(r.clients, client.ID)
	client.removeRoom(roomID)

	if len(r.clients) == 0 {
		delete(h.rooms, roomID)
		if err := r.sub.Close(); err != nil {
			slog.Warn("failed to close room subscription", "room_id", roomID, "error", err)
		}
		return
	}

	// Уведомляем оставшихся участников
	h.broadcastToRoomExcept(roomID, h.notice(TypeRoomLeave, roomID, client.UserID), client.ID)
}

// forward переводит сообщения из топика комнаты во фреймы для клиентов
func (h *Hub) forward(roomID string, sub pubsub.Subscription) {
	defer h.wg.Done()

	for msg := range sub.Messages() {
		var chat models.ChatMessage
		if err := json.Unmarshal(msg.Payload, &chat); err != nil {
			slog.Warn("dropping undecodable bus message", "topic", msg.Topic, "error", err)
			continue
		}

		frame := Message{
			Type:       TypeMessage,
			ChatRoomID: chat.ChatRoomID,
			Sender:     chat.Sender,
			Content:    chat.Content,
			Data:       msg.Payload,
			Timestamp:  chat.Timestamp,
		}
		data, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		h.SendToRoom(roomID, data)
	}
}

// SendToRoom отправляет сообщение всем локальным участникам комнаты
func (h *Hub) SendToRoom(roomID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.broadcastToRoomExcept(roomID, message, uuid.Nil)
}

func (h *Hub) broadcastToRoomExcept(roomID string, message []byte, excludeID uuid.UUID) {
	if message == nil {
		return
	}
	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for _, client := range r.clients {
		if client.ID == excludeID {
			continue
		}
		if err := client.enqueue(message); err != nil {
			slog.Warn("dropping frame for websocket client", "client_id", client.ID, "room_id", roomID, "error", err)
		}
	}
}

func (h *Hub) notice(msgType MessageType, roomID, userID string) []byte {
	data, err := json.Marshal(Message{
		Type:       msgType,
		ChatRoomID: roomID,
		Sender:     userID,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return nil
	}
	return data
}

func (h *Hub) sendRoomUsers(client *Client, roomID string) {
	if err := client.SendMessage(TypeRoomUsers, roomID, h.roomUsersUnsafe(roomID)); err != nil {
		slog.Warn("failed to send room users", "client_id", client.ID, "error", err)
	}
}

func (h *Hub) roomUsersUnsafe(roomID string) []string {
	users := make([]string, 0)
	r, ok := h.rooms[roomID]
	if !ok {
		return users
	}

	seen := make(map[string]bool)
	for _, c := range r.clients {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			users = append(users, c.UserID)
		}
	}
	sort.Strings(users)
	return users
}

// GetRoomUsers возвращает список пользователей в комнате
func (h *Hub) GetRoomUsers(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.roomUsersUnsafe(roomID)
}

// ClientCount возвращает число зарегистрированных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) newLimiter() *rate.Limiter {
	return rate.NewLimiter(h.messageRate, h.messageBurst)
}
