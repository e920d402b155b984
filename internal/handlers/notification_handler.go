package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
)

type NotificationHandler struct {
	*BaseHandler
	notificationService *services.NotificationService
}

func NewNotificationHandler(base *BaseHandler, notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         base,
		notificationService: notificationService,
	}
}

func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications", middleware.AuthMiddleware())
	{
		notifications.GET("", h.List)
		notifications.POST("/:id/read", h.MarkAsRead)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.notificationService.List(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.NoContent(c)
}
