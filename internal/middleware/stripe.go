package middleware

import (
	"io"
	"net/http"

	"helpwise_backend/internal/logger"
	"helpwise_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeWebhookVerifier читает raw body и проверяет подпись Stripe.
// Проверенное событие кладётся в контекст под StripeEventContextKey.
func StripeWebhookVerifier(webhookSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "failed to read webhook body", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		event, err := webhook.ConstructEvent(b, c.Request.Header.Get("Stripe-Signature"), webhookSecret)
		if err != nil {
			logger.CtxWithError(c.Request.Context(), "webhook signature verification failed", err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.Set(string(contextkeys.StripeEventContextKey), event)
		c.Next()
	}
}
