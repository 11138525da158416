package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/logger"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/repository/common"
	"github.com/ignatzorin/eustad-backend/internal/validation"
)

// BookingRepository описывает хранилище заявок.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error)
	ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error)
	UpdateStatus(ctx context.Context, id, professionalID uuid.UUID, to valueobject.BookingStatus) (*models.Booking, error)
}

// AccountReader возвращает учётную запись по идентификатору.
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier доставляет событие пользователю. Доставка не гарантируется.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// BookingService реализует жизненный цикл заявок.
type BookingService struct {
	repo     BookingRepository
	accounts AccountReader
	images   ImageStore
	notifier Notifier
}

// CreateBookingInput содержит данные новой заявки.
type CreateBookingInput struct {
	ProfessionalID uuid.UUID
	Message        string
	Image          io.Reader
}

// BookingStatusEvent — полезная нагрузка события смены статуса.
type BookingStatusEvent struct {
	BookingID      uuid.UUID                 `json:"booking_id"`
	ProfessionalID uuid.UUID                 `json:"professional_id"`
	Status         valueobject.BookingStatus `json:"status"`
}

// NewBookingService создаёт сервис заявок. notifier может быть nil.
func NewBookingService(repo BookingRepository, accounts AccountReader, images ImageStore, notifier Notifier) *BookingService {
	return &BookingService{repo: repo, accounts: accounts, images: images, notifier: notifier}
}

// Create создаёт заявку клиента активному профессионалу. Статус всегда pending.
func (s *BookingService) Create(ctx context.Context, client *models.User, in CreateBookingInput) (*models.Booking, error) {
	if client.Role != valueobject.RoleClient {
		return nil, apperror.ErrForbidden
	}

	message := strings.TrimSpace(in.Message)
	if message == "" && in.Image == nil {
		return nil, apperror.Validation(fmt.Errorf("message or image is required"))
	}
	if err := validation.ValidateLength("message", message, 0, validation.MaxBookingMessageLength); err != nil {
		return nil, apperror.Validation(err)
	}

	professional, err := s.accounts.GetByID(ctx, in.ProfessionalID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrProfessionalNotFound
		}
		return nil, apperror.Internal(err)
	}
	if !professional.IsProfessional() || !professional.IsActive() {
		return nil, apperror.ErrProfessionalNotFound
	}

	booking := &models.Booking{
		ClientID:       client.ID,
		ProfessionalID: professional.ID,
		Message:        message,
		Status:         valueobject.BookingStatusPending,
	}

	if in.Image != nil {
		ref, err := saveImage(ctx, s.images, FolderBookings, "image", in.Image)
		if err != nil {
			return nil, err
		}
		booking.Image = &ref
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		discardFiles(ctx, s.images, derefOr(booking.Image))
		return nil, apperror.Internal(err)
	}

	s.notify(booking.ProfessionalID, models.EventBookingCreated, *booking)

	return booking, nil
}

// ListForClient возвращает заявки клиента, новые первыми.
func (s *BookingService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error) {
	views, err := s.repo.ListForClient(ctx, clientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return views, nil
}

// ListForProfessional возвращает входящие заявки профессионала.
// Телефон клиента присутствует только в принятых заявках.
func (s *BookingService) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error) {
	views, err := s.repo.ListForProfessional(ctx, professionalID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	for i := range views {
		if views[i].Status != valueobject.BookingStatusAccepted {
			views[i].Client.Phone = nil
		}
	}
	return views, nil
}

// UpdateStatus принимает или отклоняет заявку. Доступно только целевому профессионалу
// и только пока заявка в статусе pending.
func (s *BookingService) UpdateStatus(ctx context.Context, actor *models.User, bookingID uuid.UUID, status string) (*models.Booking, error) {
	decision, err := valueobject.NewBookingDecision(status)
	if err != nil {
		return nil, err
	}

	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, apperror.ErrBookingNotFound
		}
		return nil, apperror.Internal(err)
	}

	if booking.ProfessionalID != actor.ID {
		return nil, apperror.ErrForbidden
	}
	if booking.Status.IsTerminal() {
		return nil, apperror.ErrBookingFinalized
	}

	updated, err := s.repo.UpdateStatus(ctx, bookingID, actor.ID, decision)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, apperror.ErrBookingFinalized
		}
		return nil, apperror.Internal(err)
	}

	s.notify(updated.ClientID, models.EventBookingStatusChanged, BookingStatusEvent{
		BookingID:      updated.ID,
		ProfessionalID: updated.ProfessionalID,
		Status:         updated.Status,
	})

	return updated, nil
}

func (s *BookingService) notify(userID uuid.UUID, event string, data any) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BroadcastToUser(userID, event, data); err != nil {
		logger.Log.WithFields(logrus.Fields{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("booking service: не удалось отправить уведомление")
	}
}
