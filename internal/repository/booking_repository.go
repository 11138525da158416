package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/repository/common"
)

// ErrBookingNotFound возвращается, когда заявка не найдена.
var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `b.id, b.client_id, b.professional_id, b.message, b.image, b.status, b.created_at, b.updated_at`

// BookingRepository отвечает за заявки клиентов.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository создаёт экземпляр репозитория.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create сохраняет заявку.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (client_id, professional_id, message, image, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		booking.ClientID, booking.ProfessionalID, booking.Message, booking.Image, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return fmt.Errorf("booking repository: create %w", err)
	}
	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking repository: get by id %w", err)
	}
	return &booking, nil
}

type clientBookingRow struct {
	models.Booking
	PartyName     string  `db:"party_name"`
	PartyCity     *string `db:"party_city"`
	PartyImage    *string `db:"party_profile_image"`
	PartyCategory string  `db:"party_category"`
}

// ListForClient возвращает заявки клиента с публичными данными профессионалов.
func (r *BookingRepository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error) {
	query := `
		SELECT ` + bookingColumns + `,
			u.name AS party_name, u.city AS party_city, u.profile_image AS party_profile_image,
			COALESCE(p.category, '') AS party_category
		FROM bookings b
		JOIN users u ON u.id = b.professional_id
		LEFT JOIN professional_profiles p ON p.user_id = b.professional_id
		WHERE b.client_id = $1
		ORDER BY b.created_at DESC, b.id
	`
	var rows []clientBookingRow
	if err := r.db.SelectContext(ctx, &rows, query, clientID); err != nil {
		return nil, fmt.Errorf("booking repository: list for client %w", err)
	}

	views := make([]models.ClientBookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.ClientBookingView{
			Booking: row.Booking,
			Professional: models.ProfessionalIdentity{
				UserSummary: models.UserSummary{
					ID:           row.ProfessionalID,
					Name:         row.PartyName,
					City:         row.PartyCity,
					ProfileImage: row.PartyImage,
				},
				Category: row.PartyCategory,
			},
		})
	}
	return views, nil
}

type professionalBookingRow struct {
	models.Booking
	PartyName  string  `db:"party_name"`
	PartyCity  *string `db:"party_city"`
	PartyImage *string `db:"party_profile_image"`
	PartyPhone *string `db:"party_phone"`
}

// ListForProfessional возвращает входящие заявки профессионала с данными клиентов.
// Телефон клиента выбирается только для принятых заявок.
func (r *BookingRepository) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error) {
	query := `
		SELECT ` + bookingColumns + `,
			u.name AS party_name, u.city AS party_city, u.profile_image AS party_profile_image,
			CASE WHEN b.status = $2 THEN u.phone END AS party_phone
		FROM bookings b
		JOIN users u ON u.id = b.client_id
		WHERE b.professional_id = $1
		ORDER BY b.created_at DESC, b.id
	`
	var rows []professionalBookingRow
	if err := r.db.SelectContext(ctx, &rows, query, professionalID, valueobject.BookingStatusAccepted); err != nil {
		return nil, fmt.Errorf("booking repository: list for professional %w", err)
	}

	views := make([]models.ProfessionalBookingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.ProfessionalBookingView{
			Booking: row.Booking,
			Client: models.ClientIdentity{
				UserSummary: models.UserSummary{
					ID:           row.ClientID,
					Name:         row.PartyName,
					City:         row.PartyCity,
					ProfileImage: row.PartyImage,
				},
				Phone: row.PartyPhone,
			},
		})
	}
	return views, nil
}

// UpdateStatus переводит ожидающую заявку профессионала в конечный статус.
// Если заявка уже не в pending или принадлежит другому профессионалу, возвращается common.ErrConflict.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id, professionalID uuid.UUID, to valueobject.BookingStatus) (*models.Booking, error) {
	query := `
		UPDATE bookings b
		SET status = $3, updated_at = NOW()
		WHERE b.id = $1 AND b.professional_id = $2 AND b.status = $4
		RETURNING ` + bookingColumns
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id, professionalID, to, valueobject.BookingStatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("booking repository: update status %w", err)
	}
	return &booking, nil
}
