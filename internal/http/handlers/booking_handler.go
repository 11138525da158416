package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

// BookingService — жизненный цикл заявок.
type BookingService interface {
	Create(ctx context.Context, client *models.User, in service.CreateBookingInput) (*models.Booking, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error)
	ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error)
	UpdateStatus(ctx context.Context, actor *models.User, bookingID uuid.UUID, status string) (*models.Booking, error)
}

// BookingHandler обслуживает заявки клиентов профессионалам.
type BookingHandler struct {
	bookings BookingService
}

// NewBookingHandler создаёт хэндлер.
func NewBookingHandler(bookings BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create обрабатывает POST /bookings.
func (h *BookingHandler) Create(c *gin.Context) {
	user, err := common.CurrentUser(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req struct {
		ProfessionalID string `json:"professional_id"`
		Message        string `json:"message"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}
	professionalID, err := parseProfessionalID(req.ProfessionalID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.create(c, user, service.CreateBookingInput{
		ProfessionalID: professionalID,
		Message:        req.Message,
	})
}

// CreateWithAttachment обрабатывает POST /bookings/attachment (multipart).
func (h *BookingHandler) CreateWithAttachment(c *gin.Context) {
	user, err := common.CurrentUser(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	image, err := common.OptionalFile(c, "image")
	if err != nil {
		common.Fail(c, err)
		return
	}
	professionalID, err := parseProfessionalID(c.PostForm("professional_id"))
	if err != nil {
		if image != nil {
			_ = image.Close()
		}
		common.Fail(c, err)
		return
	}

	in := service.CreateBookingInput{
		ProfessionalID: professionalID,
		Message:        c.PostForm("message"),
	}
	if image != nil {
		defer image.Close()
		in.Image = image
	}

	h.create(c, user, in)
}

func (h *BookingHandler) create(c *gin.Context, user *models.User, in service.CreateBookingInput) {
	booking, err := h.bookings.Create(c.Request.Context(), user, in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListForClient обрабатывает GET /bookings/client.
func (h *BookingHandler) ListForClient(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	views, err := h.bookings.ListForClient(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if views == nil {
		views = []models.ClientBookingView{}
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// ListForProfessional обрабатывает GET /bookings/professional.
func (h *BookingHandler) ListForProfessional(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	views, err := h.bookings.ListForProfessional(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if views == nil {
		views = []models.ProfessionalBookingView{}
	}

	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// UpdateStatus обрабатывает POST /bookings/:id/status.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	user, err := common.CurrentUser(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), user, id, req.Status)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func parseProfessionalID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperror.Validation(fmt.Errorf("professional_id is required"))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation(fmt.Errorf("professional_id must be a valid UUID"))
	}
	return id, nil
}
