package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Name              string     `gorm:"not null" json:"name"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	IsVerified        bool       `gorm:"default:false" json:"is_verified"`
	OTPCode           string     `json:"-"`
	OTPExpiresAt      *time.Time `json:"-"`
	CredibilityPoints int        `gorm:"default:0" json:"credibility_points"`

	// Expertise - массив id категорий помощи: ["<help_type_id>", ...]
	Expertise datatypes.JSON `gorm:"type:jsonb" json:"expertise"`

	// Reviews - встроенный список отзывов: [{"reviewer_id": "...", "rating": 5, "comment": "...", "created_at": "..."}]
	// Пополняется извне, приложение его только читает.
	Reviews datatypes.JSON `gorm:"type:jsonb" json:"reviews"`

	StripeAccountID *string `json:"stripe_account_id,omitempty"`
}

// Review - форма записи внутри User.Reviews
type Review struct {
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"` // 1-5
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
