// Package database описывает контракты хранилищ и реализацию на gorm.
package database

import (
	"context"
	"errors"

	"github.com/thereayou/matchmaker/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound возвращают все хранилища, если записи нет
var ErrNotFound = errors.New("record not found")

type MatchStore interface {
	CreateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	// UpdateMatchStatus перезаписывает статус и возвращает сохраненную запись
	UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error)
	// ListUserMatches - все матчи, где userID в UserA или UserB
	ListUserMatches(ctx context.Context, userID string) ([]models.Match, error)
}

type ChatStore interface {
	SaveMessage(ctx context.Context, message *models.ChatMessage) error
	// GetRoomMessages - сообщения комнаты по возрастанию timestamp
	GetRoomMessages(ctx context.Context, roomID string) ([]models.ChatMessage, error)
}

type Store interface {
	MatchStore
	ChatStore
	Close() error
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}
