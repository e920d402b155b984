package models

import "time"

type HelpRequest struct {
	BaseModel
	Title            string        `gorm:"not null" json:"title"`
	Description      string        `gorm:"type:text" json:"description"`
	HelpTypeID       string        `gorm:"type:uuid;not null;index" json:"help_type_id"`
	OfferedAmount    float64       `gorm:"not null" json:"offered_amount"`
	RequesterID      string        `gorm:"type:uuid;not null;index" json:"requester_id"`
	ResponseDeadline time.Time     `gorm:"not null" json:"response_deadline"`
	WorkDeadline     time.Time     `gorm:"not null" json:"work_deadline"`
	Status           RequestStatus `gorm:"type:varchar(20);default:'Open'" json:"status"`

	// Relations
	HelpType  *HelpType `gorm:"foreignKey:HelpTypeID" json:"help_type,omitempty"`
	Requester *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Bids      []Bid     `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"bids,omitempty"`
}
