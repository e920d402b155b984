package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для общих ошибок
бизнес-логики и домена HelpWise.
*/

// =========================================================================
// Фабричные функции (оборачивание ошибок репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные переменные (частые, статичные ошибки)
// =========================================================================

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"auth",
	"Password must be at least 6 characters long",
	http.StatusBadRequest,
)

var ErrUserNotVerified = New(
	CodeForbidden,
	"auth",
	"Email is not verified. Please verify the OTP sent to your email",
	http.StatusForbidden,
)

var ErrInvalidOTP = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired OTP code",
	http.StatusBadRequest,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Help requests ---

var ErrNotRequestOwner = New(
	CodeForbidden,
	"request",
	"Only the request owner can perform this operation",
	http.StatusForbidden,
)

var ErrRequestNotOpen = New(
	CodeConflict,
	"request",
	"Help request is no longer open",
	http.StatusConflict,
)

var ErrDeadlinePassed = New(
	CodeConflict,
	"request",
	"The response deadline for this request has passed",
	http.StatusConflict,
)

var ErrDeadlineNotFuture = New(
	CodeValidationFailed,
	"request",
	"Deadline must be a future timestamp",
	http.StatusBadRequest,
)

// --- Bids ---

var ErrCannotBidOnOwnRequest = New(
	CodeInvalidOperation,
	"bid",
	"You cannot bid on your own help request",
	http.StatusBadRequest,
)

var ErrBidAlreadyExists = New(
	CodeAlreadyExists,
	"bid",
	"You have already placed a bid on this request",
	http.StatusConflict,
)

var ErrBidNotPending = New(
	CodeConflict,
	"bid",
	"Bid can no longer be edited: it is not pending",
	http.StatusConflict,
)

var ErrSiblingBidAccepted = New(
	CodeConflict,
	"bid",
	"Another bid on this request has already been accepted",
	http.StatusConflict,
)

var ErrBidNotAccepted = New(
	CodeConflict,
	"bid",
	"Bid must be accepted before it can be completed",
	http.StatusConflict,
)

var ErrNotBidParticipant = New(
	CodeForbidden,
	"bid",
	"Only the bidder or the request owner can view this bid",
	http.StatusForbidden,
)

// --- Conversations ---

var ErrNotConversationParticipant = New(
	CodeForbidden,
	"conversation",
	"You are not a participant of this conversation",
	http.StatusForbidden,
)

var ErrConversationSelf = New(
	CodeInvalidOperation,
	"conversation",
	"A conversation requires two distinct participants",
	http.StatusBadRequest,
)

// --- AI / payments ---

var ErrAIQuotaExceeded = New(
	CodeLimitExceeded,
	"ai",
	"The AI service quota has been exceeded. Please try again later",
	http.StatusTooManyRequests,
)

var ErrAIUnavailable = New(
	CodeExternalServiceError,
	"ai",
	"The AI service is temporarily unavailable",
	http.StatusBadGateway,
)

var ErrPaymentProviderFailed = New(
	CodeExternalServiceError,
	"payment",
	"The payment provider rejected the operation",
	http.StatusBadGateway,
)
