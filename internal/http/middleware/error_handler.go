package middleware

import (
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/logger"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Внутренние ошибки маскируются, логируются и отправляются в Sentry.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperror.From(err)

		if appErr.HTTPStatus >= 500 {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")

			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetTag("path", c.FullPath())
					hub.CaptureException(err)
				})
			}
		}

		// Ответ уже отправлен хэндлером
		if c.Writer.Written() {
			return
		}

		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
	}
}
