package models

import (
	"fmt"
	"strings"
	"time"
)

// MatchStatus - статус матча
type MatchStatus string

const (
	MatchStatusWaiting  MatchStatus = "WAITING"
	MatchStatusAccepted MatchStatus = "ACCEPTED"
	MatchStatusRejected MatchStatus = "REJECTED"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusWaiting, MatchStatusAccepted, MatchStatusRejected:
		return true
	}
	return false
}

// Terminal - конечный статус. Проверяется, только если в MatchService
// включен WithTerminalGuard.
func (s MatchStatus) Terminal() bool {
	return s == MatchStatusAccepted || s == MatchStatusRejected
}

// ParseMatchStatus разбирает статус без учета регистра
func ParseMatchStatus(raw string) (MatchStatus, error) {
	s := MatchStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown match status %q", raw)
	}
	return s, nil
}

// Match - пара из инициатора и рекомендованного партнера. После создания
// меняется только Status.
type Match struct {
	ID        string      `gorm:"primaryKey;size:36" bson:"_id" dynamodbav:"id" json:"id"`
	UserA     string      `gorm:"index;not null" bson:"userA" dynamodbav:"userA" json:"userA"`
	UserB     string      `gorm:"index;not null" bson:"userB" dynamodbav:"userB" json:"userB"`
	Score     float64     `bson:"score" dynamodbav:"score" json:"score"`
	MatchedAt time.Time   `gorm:"not null" bson:"matchedAt" dynamodbav:"matchedAt" json:"matchedAt"`
	Status    MatchStatus `gorm:"size:16;not null;default:'WAITING'" bson:"status" dynamodbav:"status" json:"status"`
}

func (Match) TableName() string { return "matches" }

func (m *Match) Involves(userID string) bool {
	return m.UserA == userID || m.UserB == userID
}
