package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал
// с предопределёнными ошибками, даже если их обернули через Wrap.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation оборачивает ошибку валидации, сохраняя её текст для клиента.
func Validation(err error) *AppError {
	return Wrap(err, ErrCodeValidation, err.Error())
}

// Internal оборачивает неожиданную ошибку хранилища или файловой системы.
func Internal(err error) *AppError {
	return Wrap(err, ErrCodeInternal, "internal server error")
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// From приводит произвольную ошибку к AppError; неизвестные ошибки считаются внутренними.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsConflict(err error) bool {
	return CodeOf(err) == ErrCodeConflict
}

var (
	ErrUnauthorized       = New(ErrCodeUnauthorized, "authentication required")
	ErrSessionInvalid     = New(ErrCodeUnauthorized, "session is invalid or expired")
	ErrForbidden          = New(ErrCodeForbidden, "you do not have permission to perform this action")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "invalid email or password")
	ErrPasswordNotSet     = New(ErrCodeUnauthorized, "password has not been set for this account")
	ErrAccountPending     = New(ErrCodeForbidden, "account is pending admin approval")
	ErrAccountRejected    = New(ErrCodeForbidden, "account application was rejected")
	ErrAdminUnauthorized  = New(ErrCodeUnauthorized, "invalid admin credentials")
	ErrEmailTaken         = New(ErrCodeConflict, "email is already registered")

	ErrUserNotFound         = New(ErrCodeNotFound, "user not found")
	ErrProfessionalNotFound = New(ErrCodeNotFound, "professional not found")
	ErrGigNotFound          = New(ErrCodeNotFound, "gig not found")
	ErrBookingNotFound      = New(ErrCodeNotFound, "booking not found")
	ErrNotificationNotFound = New(ErrCodeNotFound, "notification not found")

	ErrInvalidBookingStatus = New(ErrCodeValidation, "status must be accepted or rejected")
	ErrBookingFinalized     = New(ErrCodeConflict, "booking has already been answered")
	ErrNotPending           = New(ErrCodeConflict, "account is not pending approval")
	ErrNotProfessional      = New(ErrCodeValidation, "account is not a professional")
)
