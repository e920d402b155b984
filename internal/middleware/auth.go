package middleware

import (
	"net/http"
	"strings"

	"helpwise_backend/internal/auth"
	"helpwise_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware - middleware проверки JWT. Токен берётся из заголовка
// Authorization (Bearer) или из cookie "token" - SPA ходит с cookie.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		claims, err := auth.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		// Сохраняем claims в контекст
		c.Set(string(contextkeys.UserIDContextKey), claims.UserID)
		c.Next()
	}
}

// OptionalAuthMiddleware резолвит пользователя, если токен есть, но не
// требует его. Нужен гостевому чат-боту.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr != "" {
			if claims, err := auth.ParseToken(tokenStr); err == nil {
				c.Set(string(contextkeys.UserIDContextKey), claims.UserID)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(string(contextkeys.UserIDContextKey))
	if !exists {
		return ""
	}

	id, ok := userID.(string)
	if !ok {
		return ""
	}

	return id
}
