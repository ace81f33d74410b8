package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/handlers/dto"
	"github.com/thereayou/matchmaker/pkg/auth"
)

const (
	UserIDKey = "userID"
	TokenKey  = "token"
)

type tokenExtractor func(r *http.Request) (string, error)

// AuthMiddleware проверяет JWT токен из Authorization header.
// blacklist может быть nil, тогда отзыв токенов не проверяется.
func AuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return authenticate(jwtManager, blacklist, auth.ExtractTokenFromHeader)
}

// WSAuthMiddleware специальный middleware для WebSocket: токен можно
// передать в ?token=
func WSAuthMiddleware(jwtManager *auth.JWTManager, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return authenticate(jwtManager, blacklist, auth.ExtractToken)
}

func authenticate(jwtManager *auth.JWTManager, blacklist auth.TokenBlacklist, extract tokenExtractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extract(c.Request)
		if err != nil {
			abort(c, "missing or invalid token")
			return
		}

		// Проверяем, не в черном списке ли токен
		if blacklist != nil {
			revoked, err := blacklist.IsRevoked(c.Request.Context(), token)
			if err != nil || revoked {
				abort(c, "token is revoked")
				return
			}
		}

		claims, err := jwtManager.Verify(token)
		if err != nil {
			abort(c, "invalid token")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(TokenKey, token)
		c.Next()
	}
}

func abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(http.StatusUnauthorized, message))
}

// UserID возвращает subject аутентифицированного запроса
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
