package apperrors

import (
	"net/http"
	"time"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для ошибок бизнес-логики панели.
*/

// =========================================================================
// Фабричные ФУНКЦИИ
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrResetNotAllowedYet - кулдаун сброса IP еще не истек.
// Фабрика, а не переменная: ответ обязан нести nextResetAt.
func ErrResetNotAllowedYet(nextResetAt time.Time) *AppError {
	return New(
		CodeResetNotAllowed,
		"device",
		"IP reset is not allowed yet",
		http.StatusForbidden,
	).WithDetails(map[string]interface{}{"nextResetAt": nextResetAt})
}

// ErrDeviceLimitReached - достигнут лимит устройств; логин с нового IP запрещен.
// Несет признак requiresReset и, если известно, время следующего сброса.
func ErrDeviceLimitReached(nextResetAt *time.Time) *AppError {
	details := map[string]interface{}{"requiresReset": true}
	if nextResetAt != nil {
		details["nextResetAt"] = *nextResetAt
	}
	return New(
		CodeLimitExceeded,
		"device",
		"Device limit reached. Please reset your IP to login from a new device.",
		http.StatusForbidden,
	).WithDetails(details)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

// --- Auth ---

// ErrUsernameTaken - имя пользователя уже занято.
var ErrUsernameTaken = New(
	CodeAlreadyExists,
	"auth",
	"Username already exists",
	http.StatusConflict, // 409
)

// ErrInvalidCredentials - неверный логин или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid credentials",
	http.StatusUnauthorized, // 401
)

// ErrAccountBlocked - аккаунт заблокирован администратором.
var ErrAccountBlocked = New(
	CodeForbidden,
	"auth",
	"Your account has been blocked",
	http.StatusForbidden, // 403
)

// ErrWeakPassword - пароль слишком слабый.
var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest, // 400
)

// ErrInvalidToken - неверный или просроченный токен.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized, // 401
)

// ErrInsufficientPermissions - не-админ пытается выполнить админ-действие.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden, // 403
)

// --- Referral ---

// ErrInvalidReferralCode - код не существует, неактивен или исчерпан.
var ErrInvalidReferralCode = New(
	CodeInvalidOperation,
	"referral",
	"Invalid or already used referral code",
	http.StatusBadRequest, // 400
)

// --- Purchase ---

// ErrInsufficientBalance - на балансе не хватает средств на покупку.
var ErrInsufficientBalance = New(
	CodeInsufficientBalance,
	"purchase",
	"Insufficient balance",
	http.StatusBadRequest, // 400
)

// ErrOutOfStock - для варианта не осталось свободных ключей.
var ErrOutOfStock = New(
	CodeOutOfStock,
	"purchase",
	"No available keys for this mod",
	http.StatusBadRequest, // 400
)

// ErrVariantNotFound - вариант товара не найден.
var ErrVariantNotFound = New(
	CodeNotFound,
	"purchase",
	"Mod variant not found",
	http.StatusNotFound, // 404
)

// ErrTransactionAborted - транзакция не прошла после повторных попыток
// (конфликт сериализации). Клиент может повторить запрос.
var ErrTransactionAborted = New(
	CodeTransactionAborted,
	"purchase",
	"Transaction conflict, please retry",
	http.StatusConflict, // 409
)

// --- Ledger ---

// ErrNegativeBalance - операция привела бы к отрицательному балансу.
var ErrNegativeBalance = New(
	CodeInvalidOperation,
	"ledger",
	"Balance cannot be negative",
	http.StatusBadRequest, // 400
)
