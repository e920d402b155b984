package handlers

import "github.com/gin-gonic/gin"

// RouteRegistrar - общий контракт всех хендлеров.
type RouteRegistrar interface {
	RegisterRoutes(r *gin.RouterGroup)
}

// AppHandlers собирает все хендлеры приложения в одной точке DI.
type AppHandlers struct {
	Auth          *AuthHandler
	Request       *RequestHandler
	Bid           *BidHandler
	Notification  *NotificationHandler
	Conversation  *ConversationHandler
	Chatbot       *ChatbotHandler
	Assistant     *AssistantHandler
	Payment       *PaymentHandler
}

// All возвращает хендлеры в порядке регистрации маршрутов.
func (h *AppHandlers) All() []RouteRegistrar {
	return []RouteRegistrar{
		h.Auth,
		h.Request,
		h.Bid,
		h.Notification,
		h.Conversation,
		h.Chatbot,
		h.Assistant,
		h.Payment,
	}
}
