package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
)

// RequireRoles пропускает только учётные записи с одной из ролей. Ставится после AuthMiddleware.
func RequireRoles(roles ...valueobject.Role) gin.HandlerFunc {
	allowed := make(map[valueobject.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		value, _ := c.Get(ContextRoleKey)
		role, ok := value.(valueobject.Role)
		if !ok {
			abortWithError(c, apperror.ErrUnauthorized)
			return
		}
		if _, ok := allowed[role]; !ok {
			abortWithError(c, apperror.ErrForbidden)
			return
		}
		c.Next()
	}
}
