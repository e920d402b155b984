package handlers

import (
	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/config"
	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/services"
	"helpwise_backend/internal/services/dto"
)

type AuthHandler struct {
	*BaseHandler
	authService *services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/logout", h.Logout)
		users.POST("/verify-otp", h.VerifyOTP)
		users.POST("/resend-otp", h.ResendOTP)
	}

	authorized := r.Group("/users", middleware.AuthMiddleware())
	{
		authorized.GET("/me", h.Me)
		authorized.PUT("/me", h.UpdateProfile)
		authorized.POST("/enhance-profile", h.EnhanceProfile)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	h.OK(c, session)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	h.NoContent(c)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	session, err := h.authService.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	h.OK(c, session)
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req dto.ResendOTPRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.authService.ResendOTP(c.Request.Context(), req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, gin.H{"message": "If the account exists, a new code has been sent"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetMe(userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *AuthHandler) EnhanceProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.EnhanceProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.authService.EnhanceProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	maxAge := config.GetConfig().JWT.TTL * 60
	secure := config.GetConfig().Server.Env == "production"
	c.SetCookie("token", token, maxAge, "/", "", secure, true)
}
