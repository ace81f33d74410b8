package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/matchmaker/internal/middleware"
	"github.com/thereayou/matchmaker/pkg/auth"
)

func APIEndpoints(r *gin.Engine, s *Server, blacklist auth.TokenBlacklist) {
	authMW := middleware.AuthMiddleware(s.JWTManager, blacklist)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Auth endpoints
	if s.AuthH != nil {
		r.POST("/auth/logout", authMW, s.AuthH.Logout)
	}

	// WebSocket
	r.GET("/ws", middleware.WSAuthMiddleware(s.JWTManager, blacklist), s.WSH.HandleWebSocket)

	// API endpoints
	api := r.Group("/api", authMW)
	{
		match := api.Group("/match")
		match.GET("/list", s.MatchH.ListMyMatches)
		match.POST("", s.MatchH.CreateMatch)
		match.GET("/:matchId", s.MatchH.GetMatch)
		match.PUT("/:matchId/status", s.MatchH.UpdateStatus)

		chat := api.Group("/chat")
		chat.GET("/rooms/:roomId/messages", s.ChatH.GetRoomMessages)
		chat.POST("/rooms/:roomId/messages", s.ChatH.SendMessage)
	}
}
