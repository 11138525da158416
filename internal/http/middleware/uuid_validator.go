package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр маршрута является валидным UUID.
// Использование: router.GET("/gigs/:id", UUIDValidator("id"), handler.Get)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			abortWithError(c, apperror.Validation(fmt.Errorf("parameter %s must be a valid UUID", paramName)))
			return
		}
		c.Next()
	}
}
