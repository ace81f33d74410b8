package models

import "time"

// ChatMessage - сохраненное сообщение. Timestamp ставит сервер при приеме.
type ChatMessage struct {
	ID         string    `gorm:"primaryKey;size:36" bson:"_id" dynamodbav:"id" json:"id"`
	ChatRoomID string    `gorm:"index:idx_chat_room_time,priority:1;not null" bson:"chatRoomId" dynamodbav:"chatRoomId" json:"chatRoomId"`
	Sender     string    `gorm:"not null" bson:"sender" dynamodbav:"sender" json:"sender"`
	Content    string    `bson:"content" dynamodbav:"content" json:"content"`
	Timestamp  time.Time `gorm:"index:idx_chat_room_time,priority:2;not null" bson:"timestamp" dynamodbav:"timestamp" json:"timestamp"`
	ReadStatus bool      `gorm:"default:false" bson:"readStatus" dynamodbav:"readStatus" json:"readStatus"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// InboundMessage - то, что транспорт передает в relay
type InboundMessage struct {
	ChatRoomID string `json:"chatRoomId"`
	Sender     string `json:"sender"`
	Content    string `json:"content"`
}
