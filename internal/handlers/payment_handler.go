package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
	"helpwise_backend/pkg/contextkeys"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService *services.PaymentService
	webhookSecret  string
}

func NewPaymentHandler(base *BaseHandler, paymentService *services.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
		webhookSecret:  webhookSecret,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/intent", middleware.AuthMiddleware(), h.CreateIntent)
		payments.POST("/webhook", middleware.StripeWebhookVerifier(h.webhookSecret), h.Webhook)
	}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePaymentIntentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, intent)
}

// Webhook обрабатывает событие, уже проверенное middleware по подписи.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	raw, exists := c.Get(string(contextkeys.StripeEventContextKey))
	if !exists {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Missing verified stripe event"))
		return
	}
	event, ok := raw.(stripe.Event)
	if !ok {
		h.HandleServiceError(c, apperrors.NewBadRequestError("Malformed stripe event"))
		return
	}

	if err := h.paymentService.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
