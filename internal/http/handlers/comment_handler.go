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
)

// CommentService — комментарии к объявлениям.
type CommentService interface {
	Create(ctx context.Context, author *models.User, gigID uuid.UUID, text string) (*models.GigCommentView, error)
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.GigCommentView, error)
}

// CommentHandler обслуживает комментарии.
type CommentHandler struct {
	comments CommentService
}

// NewCommentHandler создаёт хэндлер.
func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List обрабатывает GET /gig-comments/:gigId.
func (h *CommentHandler) List(c *gin.Context) {
	gigID, err := common.ParseUUIDParam(c, "gigId")
	if err != nil {
		common.Fail(c, err)
		return
	}

	comments, err := h.comments.ListByGig(c.Request.Context(), gigID)
	if err != nil {
		common.Fail(c, err)
		return
	}
	if comments == nil {
		comments = []models.GigCommentView{}
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// Create обрабатывает POST /gig-comments.
func (h *CommentHandler) Create(c *gin.Context) {
	user, err := common.CurrentUser(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req struct {
		GigID string `json:"gig_id"`
		Text  string `json:"text"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}
	gigID, err := uuid.Parse(req.GigID)
	if err != nil {
		common.Fail(c, apperror.Validation(fmt.Errorf("gig_id must be a valid UUID")))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), user, gigID, req.Text)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}
