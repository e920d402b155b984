package validator

import (
	"log"

	"helpwise_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Ошибка времени запуска приложения
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-request-status': Проверяет, что статус заявки валиден
	mustRegister("is-request-status", validateRequestStatus)

	// 'is-bid-status': Проверяет, что статус бида валиден
	mustRegister("is-bid-status", validateBidStatus)
}

// --- Функции валидации ---

func validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	switch models.RequestStatus(value) {
	case models.RequestStatusOpen, models.RequestStatusInProgress, models.RequestStatusCompleted, models.RequestStatusClosed:
		return true
	default:
		return false
	}
}

func validateBidStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.BidStatus(value) {
	case models.BidStatusPending, models.BidStatusAccepted, models.BidStatusDeclined, models.BidStatusCompleted:
		return true
	default:
		return false
	}
}
