package websocket

import (
	"encoding/json"
	"time"
)

// MessageType определяет типы фреймов
type MessageType string

const (
	// Входящие и исходящие
	TypeMessage   MessageType = "message"
	TypeRoomJoin  MessageType = "room_join"
	TypeRoomLeave MessageType = "room_leave"

	// Только исходящие
	TypeAck       MessageType = "ack"
	TypeRoomUsers MessageType = "room_users"
	TypeError     MessageType = "error"
)

// Message - фрейм поверх WebSocket. Для входящих сообщений Sender
// всегда берется из сессии, а не из фрейма.
type Message struct {
	Type       MessageType     `json:"type"`
	ChatRoomID string          `json:"chatRoomId,omitempty"`
	Sender     string          `json:"sender,omitempty"`
	Content    string          `json:"content,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// inboundFrame - входящий фрейм. Метка времени клиента не читается,
// ее выставляет сервер.
type inboundFrame struct {
	Type       MessageType     `json:"type"`
	ChatRoomID string          `json:"chatRoomId"`
	Content    string          `json:"content"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ErrorPayload - содержимое data у фрейма error
type ErrorPayload struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}
