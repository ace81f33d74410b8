package dto

// SendMessageRequest - тело POST /api/chat/rooms/:roomId/messages.
// Content передается как есть, пустая строка допустима.
type SendMessageRequest struct {
	Content string `json:"content"`
}
