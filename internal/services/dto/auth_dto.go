package dto

import (
	"time"

	"helpwise_backend/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Expertise []string `json:"expertise" validate:"omitempty,dive,min=1"`
}

type EnhanceProfileRequest struct {
	Description string `json:"description" validate:"required,min=10"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	IsVerified        bool            `json:"is_verified"`
	CredibilityPoints int             `json:"credibility_points"`
	Expertise         []string        `json:"expertise"`
	Reviews           []models.Review `json:"reviews"`
	CreatedAt         time.Time       `json:"created_at"`
}

type EnhanceProfileResponse struct {
	Expertise []string `json:"expertise"`
	Summary   string   `json:"summary"`
}
