package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
)

// Заголовки с учётными данными администратора.
const (
	HeaderAdminEmail    = "X-Admin-Email"
	HeaderAdminPassword = "X-Admin-Password"
)

// AdminPolicy хранит статические учётные данные администратора.
type AdminPolicy struct {
	email    []byte
	password []byte
}

// NewAdminPolicy создаёт политику из конфигурации.
func NewAdminPolicy(email, password string) *AdminPolicy {
	return &AdminPolicy{
		email:    []byte(strings.ToLower(strings.TrimSpace(email))),
		password: []byte(password),
	}
}

// Allows сравнивает учётные данные за постоянное время. Пустая политика не пускает никого.
func (p *AdminPolicy) Allows(email, password string) bool {
	if len(p.email) == 0 || len(p.password) == 0 {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), p.email)
	passwordOK := subtle.ConstantTimeCompare([]byte(password), p.password)
	return emailOK&passwordOK == 1
}

// AdminMiddleware требует заголовки администратора на каждом запросе.
func AdminMiddleware(policy *AdminPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Allows(c.GetHeader(HeaderAdminEmail), c.GetHeader(HeaderAdminPassword)) {
			abortWithError(c, apperror.ErrAdminUnauthorized)
			return
		}
		c.Next()
	}
}
