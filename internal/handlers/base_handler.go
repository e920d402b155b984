package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"helpwise_backend/internal/middleware"
	"helpwise_backend/internal/validator"
	"helpwise_backend/pkg/apperrors"
)

// BaseHandler - общая обвязка всех хендлеров: биндинг, валидация, ошибки.
type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

// BindAndValidate_JSON парсит тело запроса и прогоняет DTO через валидатор.
// При ошибке сам пишет ответ и возвращает false.
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Malformed JSON body"))
		return false
	}
	return h.runValidation(c, obj)
}

// BindAndValidate_Query - то же самое для query-параметров.
func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Malformed query parameters"))
		return false
	}
	return h.runValidation(c, obj)
}

func (h *BaseHandler) runValidation(c *gin.Context, obj interface{}) bool {
	if err := h.validator.Validate(obj); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// HandleServiceError транслирует ошибку сервиса в HTTP-ответ.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
}

// GetAndAuthorizeUserID достает ID пользователя, положенный auth-middleware.
// Пустой ID означает ошибку конфигурации маршрута, отвечаем 401.
func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return "", false
	}
	return userID, true
}

// OK - единый успешный ответ.
func (h *BaseHandler) OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created - ответ 201.
func (h *BaseHandler) Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// NoContent - ответ 204.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
