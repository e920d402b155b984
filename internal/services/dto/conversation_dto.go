package dto

import "time"

type StartConversationRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

type ConversationResponse struct {
	ID        string        `json:"id"`
	UserOne   *UserResponse `json:"user_one,omitempty"`
	UserTwo   *UserResponse `json:"user_two,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}
