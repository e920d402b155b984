package services

// EventBroadcaster отправляет события в live-канал. Реализуется ws.Manager.
// Все вызовы best-effort: ошибки доставки не влияют на результат операции.
type EventBroadcaster interface {
	// BroadcastNewRequest уведомляет всех подключенных клиентов о новой заявке.
	BroadcastNewRequest(payload interface{})

	// SendToConversation доставляет событие участникам комнаты разговора.
	SendToConversation(conversationID string, event string, payload interface{})

	// SendToUser доставляет событие всем соединениям конкретного пользователя.
	SendToUser(userID string, event string, payload interface{})
}

// NoopBroadcaster используется в тестах и до инициализации ws-хаба.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastNewRequest(interface{})                     {}
func (NoopBroadcaster) SendToConversation(string, string, interface{})      {}
func (NoopBroadcaster) SendToUser(string, string, interface{})              {}
