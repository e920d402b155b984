package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

type ConversationHandler struct {
	*BaseHandler
	conversationService *services.ConversationService
}

func NewConversationHandler(base *BaseHandler, conversationService *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{
		BaseHandler:         base,
		conversationService: conversationService,
	}
}

func (h *ConversationHandler) RegisterRoutes(r *gin.RouterGroup) {
	conversations := r.Group("/conversations", middleware.AuthMiddleware())
	{
		conversations.POST("", h.Start)
		conversations.GET("", h.List)
		conversations.GET("/:id", h.Get)
		conversations.GET("/:id/messages", h.GetMessages)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.DELETE("/:id/messages", h.ClearMessages)
	}
}

func (h *ConversationHandler) Start(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.StartConversationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conversation, err := h.conversationService.Start(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, conversation)
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversations, err := h.conversationService.List(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, conversations)
}

func (h *ConversationHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conversation, err := h.conversationService.Get(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, conversation)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	messages, err := h.conversationService.GetMessages(userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, messages)
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.conversationService.SendMessage(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, message)
}

func (h *ConversationHandler) ClearMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.conversationService.ClearMessages(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.NoContent(c)
}
