package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Источник уже отфильтрован CORS-middleware.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS апгрейдит соединение. Регистрируется после auth-middleware.
func ServeWS(manager *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "websocket upgrade failed", err)
			return
		}

		client := &Client{
			manager: manager,
			conn:    conn,
			send:    make(chan []byte, sendBufferSize),
			userID:  userID,
		}

		manager.register <- client

		go client.writePump()
		go client.readPump()
	}
}
