package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrQuotaExceeded = errors.New("ai provider quota exceeded")
	ErrAuthFailed    = errors.New("ai provider rejected credentials")
	ErrUnavailable   = errors.New("ai provider unavailable")
)

// classifyStatus переводит HTTP-статус провайдера в известную ошибку.
func classifyStatus(status int, provider string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", provider, ErrQuotaExceeded)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s: %w", provider, ErrAuthFailed)
	default:
		return fmt.Errorf("%s returned status %d: %w", provider, status, ErrUnavailable)
	}
}
