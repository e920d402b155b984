package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"helpwise_backend/internal/ai"
	"helpwise_backend/internal/auth"
	"helpwise_backend/internal/email"
	"helpwise_backend/internal/logger"
	"helpwise_backend/internal/models"
	"helpwise_backend/internal/repositories"
	"helpwise_backend/internal/services/dto"
	"helpwise_backend/pkg/apperrors"
)

const otpTTL = 10 * time.Minute

type AuthService struct {
	userRepo repositories.UserRepository
	emails   email.Provider
	openai   ChatCompleter
}

func NewAuthService(userRepo repositories.UserRepository, emails email.Provider, openai ChatCompleter) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		emails:   emails,
		openai:   openai,
	}
}

// Register создает неподтвержденного пользователя и отправляет OTP на почту.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	expiresAt := time.Now().Add(otpTTL)

	user := &models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		OTPCode:      otp,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	// Доставка почты не должна ронять регистрацию.
	go func() {
		if err := s.emails.SendOTP(user.Email, user.Name, otp); err != nil {
			logger.CtxWithError(ctx, "failed to send OTP email", err, "user_id", user.ID)
		}
	}()

	resp := mapUser(user)
	return &resp, nil
}

// VerifyOTP подтверждает почту и сразу выдает токен сессии.
func (s *AuthService) VerifyOTP(ctx context.Context, req dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidOTP
		}
		return nil, apperrors.InternalError(err)
	}

	if user.OTPCode == "" || user.OTPCode != req.Code {
		return nil, apperrors.ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return nil, apperrors.ErrInvalidOTP
	}

	if err := s.userRepo.VerifyUser(user.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	user.IsVerified = true

	return s.issueSession(user)
}

// ResendOTP генерирует новый код для еще не подтвержденного пользователя.
func (s *AuthService) ResendOTP(ctx context.Context, req dto.ResendOTPRequest) error {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Не раскрываем, какие адреса зарегистрированы.
			return nil
		}
		return apperrors.InternalError(err)
	}
	if user.IsVerified {
		return nil
	}

	otp, err := auth.GenerateOTP()
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.SetOTP(user.ID, otp, time.Now().Add(otpTTL)); err != nil {
		return apperrors.InternalError(err)
	}

	go func() {
		if err := s.emails.SendOTP(user.Email, user.Name, otp); err != nil {
			logger.CtxWithError(ctx, "failed to resend OTP email", err, "user_id", user.ID)
		}
	}()
	return nil
}

// Login проверяет пароль и выдает токен. Неподтвержденные аккаунты не допускаются.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, apperrors.ErrUserNotVerified
	}

	return s.issueSession(user)
}

func (s *AuthService) issueSession(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  mapUser(user),
	}, nil
}

func (s *AuthService) GetMe(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	resp := mapUser(user)
	return &resp, nil
}

func (s *AuthService) GetUser(userID string) (*dto.UserResponse, error) {
	return s.GetMe(userID)
}

func (s *AuthService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Expertise != nil {
		raw, err := json.Marshal(req.Expertise)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.Expertise = datatypes.JSON(raw)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	resp := mapUser(user)
	return &resp, nil
}

// EnhanceProfile извлекает список навыков и краткое резюме из свободного описания.
func (s *AuthService) EnhanceProfile(ctx context.Context, userID string, req dto.EnhanceProfileRequest) (*dto.EnhanceProfileResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	prompt := "Extract a list of professional skills from the text below. " +
		"Respond with strict JSON: {\"expertise\": [...], \"summary\": \"...\"}. " +
		"The summary is one or two sentences in the third person.\n\n" + req.Description

	raw, err := s.openai.ChatCompletion([]ai.Message{
		{Role: "system", Content: "You are an assistant that structures freelancer profiles."},
		{Role: "user", Content: prompt},
	}, 0.2)
	if err != nil {
		return nil, mapAIError(err)
	}

	var parsed dto.EnhanceProfileResponse
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		logger.CtxWithError(ctx, "profile enhancement returned non-JSON payload", err, "user_id", userID)
		return nil, apperrors.ErrAIUnavailable
	}

	if len(parsed.Expertise) > 0 {
		rawExp, err := json.Marshal(parsed.Expertise)
		if err == nil {
			user.Expertise = datatypes.JSON(rawExp)
			if err := s.userRepo.Update(user); err != nil {
				return nil, apperrors.InternalError(err)
			}
		}
	}

	return &parsed, nil
}

// mapAIError переводит ошибки AI-клиентов в доменные.
func mapAIError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, ai.ErrQuotaExceeded):
		return apperrors.ErrAIQuotaExceeded
	case errors.Is(err, ai.ErrAuthFailed), errors.Is(err, ai.ErrUnavailable):
		return apperrors.ErrAIUnavailable
	default:
		return apperrors.ExternalServiceError(err, "ai", "The AI service is temporarily unavailable", http.StatusBadGateway)
	}
}

// stripCodeFence убирает markdown-обрамление, которое модели любят добавлять.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
