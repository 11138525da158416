package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/validation"
)

// ProfessionalRepository описывает выборки для поиска профессионалов.
type ProfessionalRepository interface {
	SearchProfessionals(ctx context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error)
	GetActiveProfessional(ctx context.Context, id uuid.UUID) (*models.ProfessionalCard, error)
}

// GigLister возвращает объявления профессионала.
type GigLister interface {
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error)
}

// ProfessionalService реализует публичный поиск профессионалов.
type ProfessionalService struct {
	repo ProfessionalRepository
	gigs GigLister
}

// ProfessionalDetails — публичный профиль профессионала вместе с объявлениями.
type ProfessionalDetails struct {
	Professional *models.ProfessionalCard `json:"professional"`
	Gigs         []models.Gig             `json:"gigs"`
}

// NewProfessionalService создаёт сервис поиска.
func NewProfessionalService(repo ProfessionalRepository, gigs GigLister) *ProfessionalService {
	return &ProfessionalService{repo: repo, gigs: gigs}
}

// Search возвращает активных профессионалов по городу, категории и подстроке имени.
func (s *ProfessionalService) Search(ctx context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error) {
	params.City = strings.TrimSpace(params.City)
	params.Category = strings.TrimSpace(params.Category)
	params.Query = strings.TrimSpace(params.Query)
	params.Limit, params.Offset = clampPage(params.Limit, params.Offset, 20, 100)

	if params.Category != "" {
		if err := validation.ValidateCategory(params.Category); err != nil {
			return nil, apperror.Validation(err)
		}
	}

	cards, err := s.repo.SearchProfessionals(ctx, params)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return cards, nil
}

// Get возвращает публичный профиль активного профессионала.
func (s *ProfessionalService) Get(ctx context.Context, id uuid.UUID) (*ProfessionalDetails, error) {
	card, err := s.repo.GetActiveProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, apperror.Internal(err)
	}

	gigs, err := s.gigs.ListByProfessional(ctx, id)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	return &ProfessionalDetails{Professional: card, Gigs: gigs}, nil
}

// Categories возвращает справочник категорий.
func (s *ProfessionalService) Categories() []string {
	return append([]string(nil), models.Categories...)
}
