package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/validation"
)

// GigRepository описывает хранилище объявлений.
type GigRepository interface {
	Create(ctx context.Context, gig *models.Gig) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error)
	ListByActiveProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error)
	Update(ctx context.Context, gig *models.Gig) error
	UpdateImage(ctx context.Context, gig *models.Gig) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GigService содержит правила владения объявлениями.
type GigService struct {
	repo   GigRepository
	images ImageStore
}

// GigInput содержит данные объявления.
type GigInput struct {
	Title       string
	Description string
	Price       float64
	Image       io.Reader
}

// NewGigService создаёт сервис объявлений.
func NewGigService(repo GigRepository, images ImageStore) *GigService {
	return &GigService{repo: repo, images: images}
}

// Create создаёт объявление от имени активного профессионала.
func (s *GigService) Create(ctx context.Context, owner *models.User, in GigInput) (*models.Gig, error) {
	if !owner.IsProfessional() || !owner.IsActive() {
		return nil, apperror.ErrForbidden
	}
	if err := validateGig(in); err != nil {
		return nil, apperror.Validation(err)
	}

	gig := &models.Gig{
		ProfessionalID: owner.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    strings.TrimSpace(in.Description),
		Price:          in.Price,
	}

	if in.Image != nil {
		ref, err := saveImage(ctx, s.images, FolderGigs, "image", in.Image)
		if err != nil {
			return nil, err
		}
		gig.Image = &ref
	}

	if err := s.repo.Create(ctx, gig); err != nil {
		discardFiles(ctx, s.images, derefOr(gig.Image))
		return nil, apperror.Internal(err)
	}
	return gig, nil
}

// Get возвращает объявление.
func (s *GigService) Get(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	gig, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Internal(err)
	}
	return gig, nil
}

// ListMine возвращает все объявления владельца.
func (s *GigService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.repo.ListByProfessional(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return gigs, nil
}

// ListByProfessional возвращает публичные объявления. Объявления профессионалов,
// которые ещё не одобрены или отклонены, не показываются.
func (s *GigService) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	gigs, err := s.repo.ListByActiveProfessional(ctx, professionalID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return gigs, nil
}

// Update меняет текст и цену объявления. Доступно только владельцу.
func (s *GigService) Update(ctx context.Context, actorID, gigID uuid.UUID, in GigInput) (*models.Gig, error) {
	gig, err := s.owned(ctx, actorID, gigID)
	if err != nil {
		return nil, err
	}
	if err := validateGig(in); err != nil {
		return nil, apperror.Validation(err)
	}

	gig.Title = strings.TrimSpace(in.Title)
	gig.Description = strings.TrimSpace(in.Description)
	gig.Price = in.Price

	if err := s.repo.Update(ctx, gig); err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Internal(err)
	}
	return gig, nil
}

// UpdateImage заменяет изображение объявления. Доступно только владельцу.
func (s *GigService) UpdateImage(ctx context.Context, actorID, gigID uuid.UUID, image io.Reader) (*models.Gig, error) {
	if image == nil {
		return nil, apperror.Validation(fmt.Errorf("image is required"))
	}
	gig, err := s.owned(ctx, actorID, gigID)
	if err != nil {
		return nil, err
	}

	ref, err := saveImage(ctx, s.images, FolderGigs, "image", image)
	if err != nil {
		return nil, err
	}

	previous := derefOr(gig.Image)
	gig.Image = &ref
	if err := s.repo.UpdateImage(ctx, gig); err != nil {
		discardFiles(ctx, s.images, ref)
		if errors.Is(err, repository.ErrGigNotFound) {
			return nil, apperror.ErrGigNotFound
		}
		return nil, apperror.Internal(err)
	}
	discardFiles(ctx, s.images, previous)

	return gig, nil
}

// Delete удаляет объявление вместе с комментариями. Доступно только владельцу.
func (s *GigService) Delete(ctx context.Context, actorID, gigID uuid.UUID) error {
	gig, err := s.owned(ctx, actorID, gigID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, gigID); err != nil {
		if errors.Is(err, repository.ErrGigNotFound) {
			return apperror.ErrGigNotFound
		}
		return apperror.Internal(err)
	}
	discardFiles(ctx, s.images, derefOr(gig.Image))
	return nil
}

func (s *GigService) owned(ctx context.Context, actorID, gigID uuid.UUID) (*models.Gig, error) {
	gig, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}
	if gig.ProfessionalID != actorID {
		return nil, apperror.ErrForbidden
	}
	return gig, nil
}

func validateGig(in GigInput) error {
	if err := validation.ValidateGigTitle(in.Title); err != nil {
		return err
	}
	if err := validation.ValidateLength("description", strings.TrimSpace(in.Description), 0, validation.MaxGigDescriptionLength); err != nil {
		return err
	}
	return validation.ValidatePrice(in.Price)
}
