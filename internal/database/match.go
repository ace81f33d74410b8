package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateMatch(ctx context.Context, match *models.Match) error {
	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	return d.db.WithContext(ctx).Create(match).Error
}

func (d *Database) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var match models.Match
	if err := d.db.WithContext(ctx).First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (d *Database) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	var match models.Match

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&match, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&match).Update("status", status).Error; err != nil {
			return err
		}
		match.Status = status
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (d *Database) ListUserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	var matches []models.Match

	err := d.db.WithContext(ctx).
		Where("user_a = ? OR user_b = ?", userID, userID).
		Order("matched_at ASC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}
