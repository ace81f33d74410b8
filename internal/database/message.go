package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/models"
	"gorm.io/gorm/clause"
)

func (d *Database) SaveMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(message).Error
}

func (d *Database) GetRoomMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage

	err := d.db.WithContext(ctx).
		Where("chat_room_id = ?", roomID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
