package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

// AssistantHandler - AI-эндпоинты вокруг заявок. Пути исторические:
// фронт ходит на /openai/... и /gemini/... по имени провайдера.
type AssistantHandler struct {
	*BaseHandler
	assistantService *services.AssistantService
}

func NewAssistantHandler(base *BaseHandler, assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		BaseHandler:      base,
		assistantService: assistantService,
	}
}

func (h *AssistantHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/openai/enhance-description", middleware.AuthMiddleware(), h.EnhanceDescription)
	r.POST("/gemini/generate-risks", middleware.AuthMiddleware(), h.GenerateRisks)
}

func (h *AssistantHandler) EnhanceDescription(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	var req dto.EnhanceDescriptionRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.assistantService.EnhanceDescription(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *AssistantHandler) GenerateRisks(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	var req dto.RiskAnalysisRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.assistantService.GenerateRisks(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}
