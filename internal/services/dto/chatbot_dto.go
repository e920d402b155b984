package dto

import "time"

type ChatbotMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`

	// Context - история для гостей без персистентной сессии.
	// Для авторизованных пользователей игнорируется.
	Context []ChatContextEntry `json:"context" validate:"omitempty,max=100,dive"`
}

type ChatContextEntry struct {
	Sender string `json:"sender" validate:"required,oneof=user bot"`
	Text   string `json:"text" validate:"required,max=4000"`
}

type ChatbotReplyResponse struct {
	Reply string `json:"reply"`
}

type ChatEntryResponse struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatHistoryResponse struct {
	Entries      []ChatEntryResponse `json:"entries"`
	MessageCount int                 `json:"message_count"`
}
