package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatSession - персистентная история AI-ассистента, один документ на
// пользователя. Не путать с Conversation/Message (переписка между людьми).
type ChatSession struct {
	BaseModel
	UserID         string         `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Entries        datatypes.JSON `gorm:"type:jsonb" json:"entries"`
	MessageCount   int            `gorm:"default:0" json:"message_count"`
	LastActivityAt time.Time      `json:"last_activity_at"`
}

// ChatEntry - запись внутри ChatSession.Entries
type ChatEntry struct {
	Sender    ChatSender `json:"sender"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}
