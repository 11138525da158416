package common

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/middleware"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
)

// Fail передаёт ошибку в ErrorHandler и прерывает обработку.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CurrentUserID извлекает идентификатор учётной записи из контекста.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, ok := raw.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// CurrentUser извлекает учётную запись, загруженную AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, error) {
	raw, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}

	user, ok := raw.(*models.User)
	if !ok || user == nil {
		return nil, apperror.ErrUnauthorized
	}

	return user, nil
}

// ParseUUIDParam разбирает UUID из параметра маршрута.
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(c.Param(paramName))
	if err != nil {
		return uuid.Nil, apperror.Validation(fmt.Errorf("parameter %s must be a valid UUID", paramName))
	}
	return parsed, nil
}

// BindJSON разбирает тело запроса; ошибки разбора становятся ошибками валидации.
func BindJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperror.Validation(fmt.Errorf("invalid request body: %w", err))
	}
	return nil
}

// ParseIntQuery читает целочисленный query параметр с дефолтом.
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// OptionalFile открывает файл multipart поля. Отсутствующее поле не ошибка: возвращается nil.
func OptionalFile(c *gin.Context, field string) (io.ReadCloser, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, multipartError(err)
	}
	return openPart(header, field)
}

// FormFiles открывает несколько полей сразу. Вызывающий закрывает файлы через CloseAll.
func FormFiles(c *gin.Context, fields ...string) (map[string]io.ReadCloser, error) {
	files := make(map[string]io.ReadCloser, len(fields))
	for _, field := range fields {
		f, err := OptionalFile(c, field)
		if err != nil {
			CloseAll(files)
			return nil, err
		}
		if f != nil {
			files[field] = f
		}
	}
	return files, nil
}

// CloseAll закрывает открытые файлы.
func CloseAll(files map[string]io.ReadCloser) {
	for _, f := range files {
		_ = f.Close()
	}
}

// ParseFormFloat разбирает числовое поле формы.
func ParseFormFloat(c *gin.Context, field string) (float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, apperror.Validation(fmt.Errorf("%s is required", field))
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperror.Validation(fmt.Errorf("%s must be a number", field))
	}
	return v, nil
}

func openPart(header *multipart.FileHeader, field string) (io.ReadCloser, error) {
	f, err := header.Open()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("open %s: %w", field, err))
	}
	return f, nil
}

func multipartError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Validation(fmt.Errorf("request body is too large"))
	}
	return apperror.Validation(fmt.Errorf("invalid multipart form: %w", err))
}
