package database

import (
	"errors"
	"fmt"

	"github.com/thereayou/matchmaker/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open подключается к Postgres и мигрирует схему
func Open(dsn string) (*Database, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	d := NewDatabase(db)
	if err := d.Migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Migrate создает или обновляет таблицы matches и chat_messages
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(&models.Match{}, &models.ChatMessage{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
