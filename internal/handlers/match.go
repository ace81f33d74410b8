package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"github.com/thereayou/matchmaker/internal/handlers/dto"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/internal/models"
)

type MatchCoordinator interface {
	CreateMatch(ctx context.Context, requesterID string, vector []float64, candidateIDs []string) (*models.Match, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	UpdateStatus(ctx context.Context, matchID string, status models.MatchStatus) (*models.Match, error)
	GetUserMatches(ctx context.Context, userID string) ([]models.Match, error)
}

type MatchHandler struct {
	matches MatchCoordinator
}

func NewMatchHandler(matches MatchCoordinator) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// ListMyMatches возвращает матчи текущего пользователя
func (h *MatchHandler) ListMyMatches(c *gin.Context) {
	matches, err := h.matches.GetUserMatches(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, matches)
}

// CreateMatch запрашивает ранжирование и сохраняет матч с лучшим кандидатом.
// Если requesterId не передан, используется текущий пользователь.
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req dto.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req.Normalize()
	if req.RequesterID == "" {
		req.RequesterID = middleware.UserID(c)
	}

	match, err := h.matches.CreateMatch(c.Request.Context(), req.RequesterID, req.RequesterVector, req.CandidateIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, match)
}

// GetMatch возвращает матч по id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matches.GetMatch(c.Request.Context(), c.Param("matchId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, match)
}

// UpdateStatus меняет статус матча: PUT /api/match/:matchId/status?status=ACCEPTED
func (h *MatchHandler) UpdateStatus(c *gin.Context) {
	status, err := models.ParseMatchStatus(c.Query("status"))
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.CodeMatchInvalidStatus,
			"status must be one of WAITING, ACCEPTED, REJECTED", err))
		return
	}

	match, err := h.matches.UpdateStatus(c.Request.Context(), c.Param("matchId"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, match)
}
