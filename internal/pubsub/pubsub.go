// Package pubsub - шина для рассылки сообщений чата. Доставка не более
// одного раза, подписчик не получит то, что опубликовано до подписки.
package pubsub

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("pubsub: bus closed")

type Message struct {
	Topic   string
	Payload []byte
}

// Subscription отдает сообщения одного топика до Close
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Bus - публикация и подписка. Publish не ждет подписчиков.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}

const roomTopicPrefix = "chat.room."

// RoomTopic - топик сообщений одной комнаты
func RoomTopic(roomID string) string {
	return roomTopicPrefix + roomID
}
