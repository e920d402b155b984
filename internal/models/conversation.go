package models

import "time"

// Conversation - тред ровно между двумя пользователями. Пара хранится в
// каноническом (лексикографическом) порядке, поэтому поиск по неупорядоченной
// паре сводится к обычному равенству двух колонок.
type Conversation struct {
	BaseModel
	UserOneID string `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"user_one_id"`
	UserTwoID string `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"user_two_id"`

	UserOne  *User     `gorm:"foreignKey:UserOneID" json:"user_one,omitempty"`
	UserTwo  *User     `gorm:"foreignKey:UserTwoID" json:"user_two,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

// HasParticipant проверяет участие пользователя в диалоге.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.UserOneID == userID || c.UserTwoID == userID
}

type Message struct {
	ID             string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConversationID string    `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       string    `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

// NormalizePair приводит пару id к каноническому порядку хранения.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
