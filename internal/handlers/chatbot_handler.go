package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

type ChatbotHandler struct {
	*BaseHandler
	chatbotService *services.ChatbotService
}

func NewChatbotHandler(base *BaseHandler, chatbotService *services.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{
		BaseHandler:    base,
		chatbotService: chatbotService,
	}
}

func (h *ChatbotHandler) RegisterRoutes(r *gin.RouterGroup) {
	// POST доступен и гостям: без токена ответ одноразовый.
	r.POST("/chatbot", middleware.OptionalAuthMiddleware(), h.SendMessage)

	authorized := r.Group("/chatbot", middleware.AuthMiddleware())
	{
		authorized.GET("/history", h.GetHistory)
		authorized.DELETE("/history", h.ClearHistory)
	}
}

func (h *ChatbotHandler) SendMessage(c *gin.Context) {
	var req dto.ChatbotMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	// Пустой userID означает гостя.
	userID := middleware.GetUserID(c)

	reply, err := h.chatbotService.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reply)
}

func (h *ChatbotHandler) GetHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	history, err := h.chatbotService.GetHistory(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, history)
}

func (h *ChatbotHandler) ClearHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.chatbotService.ClearHistory(userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.NoContent(c)
}
