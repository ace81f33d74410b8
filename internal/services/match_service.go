package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"github.com/thereayou/matchmaker/internal/database"
	"github.com/thereayou/matchmaker/internal/models"
	"github.com/thereayou/matchmaker/internal/recommender"
)

// MatchService создает матчи по ранжированию рекомендателя и меняет их статусы
type MatchService struct {
	store         database.MatchStore
	ranker        recommender.Ranker
	terminalGuard bool
	now           func() time.Time
}

type MatchOption func(*MatchService)

// WithTerminalGuard делает ACCEPTED и REJECTED конечными: после них
// принимается только тот же статус.
func WithTerminalGuard(enabled bool) MatchOption {
	return func(s *MatchService) { s.terminalGuard = enabled }
}

func NewMatchService(store database.MatchStore, ranker recommender.Ranker, opts ...MatchOption) *MatchService {
	s := &MatchService{
		store:  store,
		ranker: ranker,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMatch ранжирует candidateIDs и создает матч с первым кандидатом.
// При пустом ранжировании ничего не сохраняется.
func (s *MatchService) CreateMatch(ctx context.Context, requesterID string, vector []float64, candidateIDs []string) (*models.Match, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return nil, apperrors.New(apperrors.CodeMatchRequesterEmpty, "requester id is required")
	}
	if len(candidateIDs) == 0 {
		return nil, apperrors.New(apperrors.CodeMatchCandidatesEmpty, "candidate pool must not be empty")
	}

	ranked, err := s.ranker.Rank(ctx, requesterID, vector, candidateIDs)
	if err != nil {
		slog.WarnContext(ctx, "recommender call failed", "requester", requesterID, "error", err)
		return nil, apperrors.Wrap(apperrors.CodeRecommenderUnavailable, "recommender unavailable", err)
	}

	partner := firstRanked(ranked)
	if partner == "" {
		return nil, apperrors.New(apperrors.CodeRecommendationEmpty, "no recommendation for the given candidates")
	}

	match := &models.Match{
		ID:        uuid.NewString(),
		UserA:     requesterID,
		UserB:     partner,
		Score:     0,
		MatchedAt: s.now(),
		Status:    models.MatchStatusWaiting,
	}
	if err := s.store.CreateMatch(ctx, match); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "failed to save match", err)
	}

	slog.InfoContext(ctx, "match created", "match_id", match.ID, "user_a", match.UserA, "user_b", match.UserB)
	return match, nil
}

func firstRanked(ranked []string) string {
	for _, id := range ranked {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return ""
}

// UpdateStatus перезаписывает статус матча. Параллельные обновления:
// побеждает последняя запись.
func (s *MatchService) UpdateStatus(ctx context.Context, matchID string, status models.MatchStatus) (*models.Match, error) {
	if !status.Valid() {
		return nil, apperrors.New(apperrors.CodeMatchInvalidStatus, "status must be one of WAITING, ACCEPTED, REJECTED")
	}

	if s.terminalGuard {
		current, err := s.store.GetMatch(ctx, matchID)
		if err != nil {
			return nil, s.lookupError(err)
		}
		if current.Status.Terminal() && current.Status != status {
			return nil, apperrors.New(apperrors.CodeMatchStatusTerminal,
				"match is already "+string(current.Status))
		}
	}

	match, err := s.store.UpdateMatchStatus(ctx, matchID, status)
	if err != nil {
		return nil, s.lookupError(err)
	}

	slog.InfoContext(ctx, "match status updated", "match_id", match.ID, "status", match.Status)
	return match, nil
}

func (s *MatchService) lookupError(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeMatchNotFound, "match not found", err)
	}
	return apperrors.Wrap(apperrors.CodeStorageFailure, "failed to load match", err)
}

func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return match, nil
}

// GetUserMatches - матчи участника в порядке хранилища
func (s *MatchService) GetUserMatches(ctx context.Context, userID string) ([]models.Match, error) {
	matches, err := s.store.ListUserMatches(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorageFailure, "failed to list matches", err)
	}
	if matches == nil {
		matches = []models.Match{}
	}
	return matches, nil
}
