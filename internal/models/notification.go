package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Message string           `json:"message"`
	Data    datatypes.JSON   `gorm:"type:jsonb" json:"data,omitempty"` // {"request_id": "...", "bid_id": "..."}
	IsRead  bool             `gorm:"default:false" json:"is_read"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
	BidID   *string          `gorm:"type:uuid;index" json:"bid_id,omitempty"`
}
