package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/apperrors"
	"github.com/thereayou/matchmaker/internal/handlers/dto"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Success(data))
}

// respondError переводит ошибку в конверт. Причина наружу не уходит,
// только в лог.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	status := appErr.Code.HTTPStatus()

	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(), "code", appErr.Code, "error", err)
	}

	c.JSON(status, dto.Fail(status, appErr.Message))
}

func badRequest(c *gin.Context, message string) {
	respondError(c, apperrors.New(apperrors.CodeInvalidRequest, message))
}
