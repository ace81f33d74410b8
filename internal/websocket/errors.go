package websocket

import "errors"

var (
	ErrClientQueueFull = errors.New("client message queue is full")
	ErrClientClosed    = errors.New("client connection is closed")
	ErrInvalidMessage  = errors.New("invalid message format")
	ErrRoomRequired    = errors.New("chatRoomId is required")
	ErrRateLimited     = errors.New("message rate limit exceeded")
	ErrHubStopped      = errors.New("hub is stopped")
)
