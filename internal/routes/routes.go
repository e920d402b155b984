package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/handlers"
	"helpwise_backend/internal/middleware"
	"helpwise_backend/ws"
)

// SetupRouter собирает весь HTTP-роутер приложения.
func SetupRouter(appHandlers *handlers.AppHandlers, wsManager *ws.Manager) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	for _, h := range appHandlers.All() {
		h.RegisterRoutes(api)
	}

	r.GET("/ws", middleware.AuthMiddleware(), ws.ServeWS(wsManager))

	return r
}
