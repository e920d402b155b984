package services

import (
	"database/sql"

	"gorm.io/gorm"

	"helpwise_backend/internal/ai"
)

// TxRunner - то, что умеет *gorm.DB: выполнить функцию в транзакции.
type TxRunner interface {
	Transaction(fc func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

// ChatCompleter - chat-completions API (ai.OpenAIClient).
type ChatCompleter interface {
	ChatCompletion(messages []ai.Message, temperature float64) (string, error)
}

// ContentGenerator - одноразовая генерация по промпту (ai.GeminiClient).
type ContentGenerator interface {
	GenerateContent(prompt string) (string, error)
}
