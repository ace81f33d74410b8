package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/pkg/auth"
)

var errUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "unauthorized")

// AuthHandler отзывает токены. Выдача токенов вне этого сервиса.
type AuthHandler struct {
	jwtManager *auth.JWTManager
	blacklist  auth.TokenBlacklist
}

func NewAuthHandler(jwtMgr *auth.JWTManager, blacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{jwtManager: jwtMgr, blacklist: blacklist}
}

// Logout ставит токен в черный список в Redis до истечения
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken := c.GetString(middleware.TokenKey)
	if rawToken == "" {
		respondError(c, errUnauthorized)
		return
	}

	exp, err := h.jwtManager.Expiry(rawToken)
	if err != nil {
		respondError(c, errUnauthorized)
		return
	}

	if err := h.blacklist.Revoke(c.Request.Context(), rawToken, time.Until(exp)); err != nil {
		respondError(c, apperrors.Wrap(apperrors.CodeStorageFailure, "failed to revoke token", err))
		return
	}
	respondOK(c, nil)
}
