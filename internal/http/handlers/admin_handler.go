package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eustad-backend/internal/models"
)

// AdminService — модерация и управление учётными записями.
type AdminService interface {
	Approve(ctx context.Context, userID uuid.UUID) (*models.User, error)
	Reject(ctx context.Context, userID uuid.UUID) (*models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ListPendingProfessionals(ctx context.Context) ([]models.PendingProfessional, error)
	ListUsers(ctx context.Context, params models.UserListParams) ([]models.User, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// AdminHandler обслуживает административные маршруты. Доступ проверяет AdminMiddleware.
type AdminHandler struct {
	admin AdminService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(admin AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Approve обрабатывает POST /admin/approve/:userId.
func (h *AdminHandler) Approve(c *gin.Context) {
	h.decide(c, h.admin.Approve)
}

// Reject обрабатывает POST /admin/reject/:userId.
func (h *AdminHandler) Reject(c *gin.Context) {
	h.decide(c, h.admin.Reject)
}

func (h *AdminHandler) decide(c *gin.Context, fn func(context.Context, uuid.UUID) (*models.User, error)) {
	userID, err := common.ParseUUIDParam(c, "userId")
	if err != nil {
		common.Fail(c, err)
		return
	}

	user, err := fn(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser обрабатывает DELETE /admin/users/:userId.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "userId")
	if err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.admin.DeleteUser(c.Request.Context(), userID); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// ListPendingProfessionals обрабатывает GET /admin/pending-professionals.
func (h *AdminHandler) ListPendingProfessionals(c *gin.Context) {
	pending, err := h.admin.ListPendingProfessionals(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}
	if pending == nil {
		pending = []models.PendingProfessional{}
	}

	c.JSON(http.StatusOK, gin.H{"professionals": pending})
}

// ListUsers обрабатывает GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context(), models.UserListParams{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Limit:  common.ParseIntQuery(c, "limit", 50),
		Offset: common.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Stats обрабатывает GET /admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
