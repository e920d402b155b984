package dto

import "time"

type PlaceBidRequest struct {
	RequestID string `json:"request_id" validate:"required,uuid"`
	// Ноль допустим: предложение сделать бесплатно.
	BidAmount *float64 `json:"bid_amount" validate:"required,min=0"`
	Message   *string  `json:"message" validate:"omitempty,min=10"`
}

type UpdateBidRequest struct {
	BidAmount *float64 `json:"bid_amount" validate:"omitempty,min=0"`
	Message   *string  `json:"message" validate:"omitempty,min=10"`
}

type AcceptBidRequest struct {
	AgreedAmount *float64 `json:"agreed_amount" validate:"omitempty,gt=0"`
}

type BidResponse struct {
	ID             string           `json:"id"`
	RequestID      string           `json:"request_id"`
	Request        *RequestResponse `json:"request,omitempty"`
	Bidder         *UserResponse    `json:"bidder,omitempty"`
	BidAmount      float64          `json:"bid_amount"`
	Message        *string          `json:"message,omitempty"`
	Status         string           `json:"status"`
	AgreedAmount   float64          `json:"agreed_amount"`
	ConversationID *string          `json:"conversation_id,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
