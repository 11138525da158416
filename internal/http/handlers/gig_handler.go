package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

// GigService — операции над объявлениями.
type GigService interface {
	Create(ctx context.Context, owner *models.User, in service.GigInput) (*models.Gig, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Gig, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error)
	Update(ctx context.Context, actorID, gigID uuid.UUID, in service.GigInput) (*models.Gig, error)
	UpdateImage(ctx context.Context, actorID, gigID uuid.UUID, image io.Reader) (*models.Gig, error)
	Delete(ctx context.Context, actorID, gigID uuid.UUID) error
}

// GigHandler обслуживает объявления профессионалов.
type GigHandler struct {
	gigs GigService
}

// NewGigHandler создаёт хэндлер.
func NewGigHandler(gigs GigService) *GigHandler {
	return &GigHandler{gigs: gigs}
}

// Create обрабатывает POST /gigs (multipart: title, description, price, image).
func (h *GigHandler) Create(c *gin.Context) {
	user, err := common.CurrentUser(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	price, err := common.ParseFormFloat(c, "price")
	if err != nil {
		common.Fail(c, err)
		return
	}

	image, err := common.OptionalFile(c, "image")
	if err != nil {
		common.Fail(c, err)
		return
	}
	in := service.GigInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       price,
	}
	if image != nil {
		defer image.Close()
		in.Image = image
	}

	gig, err := h.gigs.Create(c.Request.Context(), user, in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gig)
}

// ListMine обрабатывает GET /gigs/me.
func (h *GigHandler) ListMine(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	gigs, err := h.gigs.ListMine(c.Request.Context(), userID)
	h.respondList(c, gigs, err)
}

// ListByProfessional обрабатывает GET /gigs/by/:professionalId.
func (h *GigHandler) ListByProfessional(c *gin.Context) {
	professionalID, err := common.ParseUUIDParam(c, "professionalId")
	if err != nil {
		common.Fail(c, err)
		return
	}
	gigs, err := h.gigs.ListByProfessional(c.Request.Context(), professionalID)
	h.respondList(c, gigs, err)
}

func (h *GigHandler) respondList(c *gin.Context, gigs []models.Gig, err error) {
	if err != nil {
		common.Fail(c, err)
		return
	}
	if gigs == nil {
		gigs = []models.Gig{}
	}

	c.JSON(http.StatusOK, gin.H{"gigs": gigs})
}

// Get обрабатывает GET /gigs/:id.
func (h *GigHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	gig, err := h.gigs.Get(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// Update обрабатывает PUT /gigs/:id.
func (h *GigHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
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
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	gig, err := h.gigs.Update(c.Request.Context(), userID, id, service.GigInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// UpdateImage обрабатывает PUT /gigs/:id/image.
func (h *GigHandler) UpdateImage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	file, err := common.OptionalFile(c, "image")
	if err != nil {
		common.Fail(c, err)
		return
	}
	var image io.Reader
	if file != nil {
		defer file.Close()
		image = file
	}

	gig, err := h.gigs.UpdateImage(c.Request.Context(), userID, id, image)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gig)
}

// Delete обрабатывает DELETE /gigs/:id.
func (h *GigHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	if err := h.gigs.Delete(c.Request.Context(), userID, id); err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "gig deleted"})
}
