package models

type Bid struct {
	BaseModel
	RequestID string  `gorm:"type:uuid;not null;uniqueIndex:idx_bid_request_bidder" json:"request_id"`
	BidderID  string  `gorm:"type:uuid;not null;uniqueIndex:idx_bid_request_bidder" json:"bidder_id"`
	BidAmount float64 `gorm:"not null" json:"bid_amount"`
	Message   *string `json:"message,omitempty"`
	Status    BidStatus `gorm:"type:varchar(20);default:'Pending'" json:"status"`

	// AgreedAmount фиксируется равным BidAmount при завершении, до того 0.
	AgreedAmount   float64 `gorm:"default:0" json:"agreed_amount"`
	ConversationID *string `gorm:"type:uuid" json:"conversation_id,omitempty"`

	// Relations
	Request *HelpRequest `gorm:"foreignKey:RequestID" json:"request,omitempty"`
	Bidder  *User        `gorm:"foreignKey:BidderID" json:"bidder,omitempty"`
}
