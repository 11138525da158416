package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

// ProfessionalService — публичный поиск профессионалов.
type ProfessionalService interface {
	Search(ctx context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error)
	Get(ctx context.Context, id uuid.UUID) (*service.ProfessionalDetails, error)
	Categories() []string
}

// ProfessionalHandler обслуживает каталог профессионалов.
type ProfessionalHandler struct {
	professionals ProfessionalService
}

// NewProfessionalHandler создаёт хэндлер.
func NewProfessionalHandler(professionals ProfessionalService) *ProfessionalHandler {
	return &ProfessionalHandler{professionals: professionals}
}

// Search обрабатывает GET /professionals.
func (h *ProfessionalHandler) Search(c *gin.Context) {
	cards, err := h.professionals.Search(c.Request.Context(), models.ProfessionalSearchParams{
		City:     c.Query("city"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    common.ParseIntQuery(c, "limit", 20),
		Offset:   common.ParseIntQuery(c, "offset", 0),
	})
	if err != nil {
		common.Fail(c, err)
		return
	}
	if cards == nil {
		cards = []models.ProfessionalCard{}
	}

	c.JSON(http.StatusOK, gin.H{"professionals": cards})
}

// Get обрабатывает GET /professionals/:id.
func (h *ProfessionalHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.Fail(c, err)
		return
	}

	details, err := h.professionals.Get(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// Categories обрабатывает GET /categories.
func (h *ProfessionalHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.professionals.Categories()})
}
