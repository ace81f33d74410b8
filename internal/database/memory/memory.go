// Package memory - хранилище в памяти процесса для разработки и тестов.
// Записи копируются на входе и выходе.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/models"
)

type Store struct {
	mu       sync.RWMutex
	matches  map[string]models.Match
	order    []string
	messages map[string][]models.ChatMessage
}

func New() *Store {
	return &Store{
		matches:  make(map[string]models.Match),
		messages: make(map[string][]models.ChatMessage),
	}
}

func (s *Store) CreateMatch(_ context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if match.ID == "" {
		match.ID = uuid.NewString()
	}
	if _, ok := s.matches[match.ID]; !ok {
		s.order = append(s.order, match.ID)
	}
	s.matches[match.ID] = *match
	return nil
}

func (s *Store) GetMatch(_ context.Context, id string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &match, nil
}

func (s *Store) UpdateMatchStatus(_ context.Context, id string, status models.MatchStatus) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	match.Status = status
	s.matches[id] = match
	return &match, nil
}

func (s *Store) ListUserMatches(_ context.Context, userID string) ([]models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.Match
	for _, id := range s.order {
		match := s.matches[id]
		if match.Involves(userID) {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

func (s *Store) SaveMessage(_ context.Context, message *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	s.messages[message.ChatRoomID] = append(s.messages[message.ChatRoomID], *message)
	return nil
}

func (s *Store) GetRoomMessages(_ context.Context, roomID string) ([]models.ChatMessage, error) {
	s.mu.RLock()
	stored := s.messages[roomID]
	messages := make([]models.ChatMessage, len(stored))
	copy(messages, stored)
	s.mu.RUnlock()

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

// HasMessage проверяет, сохранено ли сообщение id в комнате roomID
func (s *Store) HasMessage(roomID, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages[roomID] {
		if m.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Close() error { return nil }
