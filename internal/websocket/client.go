package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"golang.org/x/time/rate"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер сообщения
	maxMessageSize = 64 * 1024

	sendBuffer = 256
)

// ClientMessageHandler обрабатывает фреймы типа message
type ClientMessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *Message) error
}

type Client struct {
	ID     uuid.UUID
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub

	send    chan []byte
	limiter *rate.Limiter

	mu     sync.RWMutex
	rooms  map[string]bool
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		ID:      uuid.New(),
		UserID:  userID,
		Conn:    conn,
		Hub:     hub,
		send:    make(chan []byte, sendBuffer),
		limiter: hub.newLimiter(),
		rooms:   make(map[string]bool),
	}
}

// ReadPump читает фреймы от клиента до разрыва соединения
func (c *Client) ReadPump(handler ClientMessageHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("websocket read failed", "client_id", c.ID, "error", err)
			}
			return
		}

		var in inboundFrame
		if err := json.Unmarshal(raw, &in); err != nil {
			c.SendError(ErrInvalidMessage)
			continue
		}
		msg := Message{
			Type:       in.Type,
			ChatRoomID: in.ChatRoomID,
			Sender:     c.UserID,
			Content:    in.Content,
			Data:       in.Data,
		}

		switch msg.Type {
		case TypeRoomJoin:
			if err := c.Hub.JoinRoom(c, msg.ChatRoomID); err != nil {
				c.SendError(err)
			}

		case TypeRoomLeave:
			c.Hub.LeaveRoom(c, msg.ChatRoomID)

		case TypeMessage:
			if !c.limiter.Allow() {
				c.SendError(ErrRateLimited)
				continue
			}
			if handler == nil {
				continue
			}
			if err := handler.HandleMessage(c.Hub.ctx, c, &msg); err != nil {
				slog.Warn("failed to handle websocket message", "client_id", c.ID, "error", err)
				c.SendError(err)
			}

		default:
			c.SendError(ErrInvalidMessage)
		}
	}
}

// WritePump отправляет сообщения клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Отправляем все накопившиеся сообщения отдельными фреймами
			n := len(c.send)
			for i := 0; i < n; i++ {
				queued, ok := <-c.send
				if !ok {
					c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, queued); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// enqueue кладет фрейм в очередь, не блокируясь
func (c *Client) enqueue(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// SendMessage отправляет клиенту фрейм с data
func (c *Client) SendMessage(msgType MessageType, roomID string, data interface{}) error {
	msg := Message{
		Type:       msgType,
		ChatRoomID: roomID,
		Timestamp:  time.Now().UTC(),
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return err
		}
		msg.Data = jsonData
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.enqueue(msgData)
}

// SendError отправляет фрейм error. Ошибки домена отдают свой код,
// остальные считаются ошибкой запроса.
func (c *Client) SendError(err error) {
	payload := ErrorPayload{Code: string(apperrors.CodeInvalidRequest), Error: err.Error()}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		payload = ErrorPayload{Code: string(appErr.Code), Error: appErr.Message}
	}

	if err := c.SendMessage(TypeError, "", payload); err != nil {
		slog.Debug("failed to send error frame", "client_id", c.ID, "error", err)
	}
}

func (c *Client) IsInRoom(roomID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[roomID]
}

// Rooms возвращает комнаты, в которых состоит клиент
func (c *Client) Rooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}

func (c *Client) addRoom(roomID string) {
	c.mu.Lock()
	c.rooms[roomID] = true
	c.mu.Unlock()
}

func (c *Client) removeRoom(roomID string) {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
}
