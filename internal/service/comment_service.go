package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/validation"
)

// CommentRepository описывает хранилище комментариев.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.GigComment) error
	ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.GigCommentView, error)
}

// GigReader возвращает объявление по идентификатору.
type GigReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// CommentService добавляет и выдаёт комментарии к объявлениям.
type CommentService struct {
	repo CommentRepository
	gigs GigReader
}

// NewCommentService создаёт сервис комментариев.
func NewCommentService(repo CommentRepository, gigs GigReader) *CommentService {
	return &CommentService{repo: repo, gigs: gigs}
}

// Create добавляет комментарий автора к существующему объявлению.
func (s *CommentService) Create(ctx context.Context, author *models.User, gigID uuid.UUID, text string) (*models.GigCommentView, error) {
	if err := validation.ValidateComment(text); err != nil {
		return nil, apperror.Validation(err)
	}
	if _, err := s.gigs.Get(ctx, gigID); err != nil {
		return nil, err
	}

	comment := &models.GigComment{
		GigID:    gigID,
		AuthorID: author.ID,
		Body:     strings.TrimSpace(text),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, apperror.Internal(err)
	}

	return &models.GigCommentView{
		ID:        comment.ID,
		GigID:     comment.GigID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
		Author: models.UserSummary{
			ID:           author.ID,
			Name:         author.Name,
			City:         author.City,
			ProfileImage: author.ProfileImage,
		},
	}, nil
}

// ListByGig возвращает комментарии объявления, старые первыми.
func (s *CommentService) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.GigCommentView, error) {
	if _, err := s.gigs.Get(ctx, gigID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListByGig(ctx, gigID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return comments, nil
}
