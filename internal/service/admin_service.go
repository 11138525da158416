package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/logger"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/repository/common"
)

// AdminUserRepository описывает операции модерации над учётными записями.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListPendingProfessionals(ctx context.Context) ([]models.PendingProfessional, error)
	ListUsers(ctx context.Context, params models.UserListParams) ([]models.User, error)
	DecidePending(ctx context.Context, userID uuid.UUID, to valueobject.AccountStatus) error
}

// AdminRepository описывает каскадное удаление и статистику.
type AdminRepository interface {
	DeleteUserCascade(ctx context.Context, userID uuid.UUID) ([]string, error)
	Stats(ctx context.Context) (*models.PlatformStats, error)
}

// AdminService реализует модерацию профессионалов и административные операции.
type AdminService struct {
	users    AdminUserRepository
	admin    AdminRepository
	images   ImageStore
	cache    *CacheService
	statsTTL time.Duration
}

// NewAdminService создаёт административный сервис.
func NewAdminService(users AdminUserRepository, admin AdminRepository, images ImageStore, cache *CacheService, statsTTL time.Duration) *AdminService {
	return &AdminService{
		users:    users,
		admin:    admin,
		images:   images,
		cache:    cache,
		statsTTL: statsTTL,
	}
}

// Approve активирует ожидающего профессионала.
func (s *AdminService) Approve(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.decide(ctx, userID, valueobject.AccountStatusActive)
}

// Reject отклоняет заявку профессионала.
func (s *AdminService) Reject(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.decide(ctx, userID, valueobject.AccountStatusRejected)
}

func (s *AdminService) decide(ctx context.Context, userID uuid.UUID, to valueobject.AccountStatus) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsProfessional() {
		return nil, apperror.ErrNotProfessional
	}
	if !user.Status.CanTransitionTo(to) {
		return nil, apperror.ErrNotPending
	}

	if err := s.users.DecidePending(ctx, userID, to); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, apperror.ErrNotPending
		}
		return nil, apperror.Internal(err)
	}
	s.invalidateStats()

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  to,
	}).Info("admin service: решение по заявке профессионала")

	return s.getUser(ctx, userID)
}

// DeleteUser удаляет учётную запись со всеми зависимыми данными и файлами.
func (s *AdminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	files, err := s.admin.DeleteUserCascade(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return apperror.Internal(err)
	}
	s.invalidateStats()

	discardFiles(ctx, s.images, files...)

	logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"files":   len(files),
	}).Info("admin service: учётная запись удалена")

	return nil
}

// ListPendingProfessionals возвращает заявки на модерации.
func (s *AdminService) ListPendingProfessionals(ctx context.Context) ([]models.PendingProfessional, error) {
	pending, err := s.users.ListPendingProfessionals(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return pending, nil
}

// ListUsers возвращает учётные записи с фильтрами по роли и статусу.
func (s *AdminService) ListUsers(ctx context.Context, params models.UserListParams) ([]models.User, error) {
	if params.Role != "" && !valueobject.Role(params.Role).IsValid() {
		return nil, apperror.Validation(fmt.Errorf("role %q is not supported", params.Role))
	}
	if params.Status != "" && !valueobject.AccountStatus(params.Status).IsValid() {
		return nil, apperror.Validation(fmt.Errorf("status %q is not supported", params.Status))
	}
	params.Limit, params.Offset = clampPage(params.Limit, params.Offset, 50, 200)

	users, err := s.users.ListUsers(ctx, params)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return users, nil
}

// Stats возвращает агрегированную статистику, кешируя её на statsTTL.
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	value, err := s.cache.GetOrSet(ctx, AdminStatsCacheKey, s.statsTTL, func(ctx context.Context) (interface{}, error) {
		return s.admin.Stats(ctx)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return value.(*models.PlatformStats), nil
}

func (s *AdminService) invalidateStats() {
	s.cache.Delete(AdminStatsCacheKey)
}

func (s *AdminService) getUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}
