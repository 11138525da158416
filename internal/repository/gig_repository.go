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

// ErrGigNotFound возвращается, когда объявление не найдено.
var ErrGigNotFound = errors.New("gig not found")

const gigColumns = `id, professional_id, title, description, price, image, created_at, updated_at`

// GigRepository отвечает за работу с объявлениями.
type GigRepository struct {
	db *sqlx.DB
}

// NewGigRepository создаёт экземпляр репозитория.
func NewGigRepository(db *sqlx.DB) *GigRepository {
	return &GigRepository{db: db}
}

// Create создаёт объявление.
func (r *GigRepository) Create(ctx context.Context, gig *models.Gig) error {
	query := `
		INSERT INTO gigs (professional_id, title, description, price, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	if err := r.db.QueryRowxContext(
		ctx, query,
		gig.ProfessionalID, gig.Title, gig.Description, gig.Price, gig.Image,
	).Scan(&gig.ID, &gig.CreatedAt, &gig.UpdatedAt); err != nil {
		return fmt.Errorf("gig repository: create %w", err)
	}
	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *GigRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	var gig models.Gig
	if err := r.db.GetContext(ctx, &gig, `SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGigNotFound
		}
		return nil, fmt.Errorf("gig repository: get by id %w", err)
	}
	return &gig, nil
}

// ListByProfessional возвращает объявления профессионала, новые первыми.
func (r *GigRepository) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	gigs := []models.Gig{}
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE professional_id = $1 ORDER BY created_at DESC, id`
	if err := r.db.SelectContext(ctx, &gigs, query, professionalID); err != nil {
		return nil, fmt.Errorf("gig repository: list by professional %w", err)
	}
	return gigs, nil
}

// ListByActiveProfessional возвращает объявления только если владелец — активный профессионал.
func (r *GigRepository) ListByActiveProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	gigs := []models.Gig{}
	query := `
		SELECT g.id, g.professional_id, g.title, g.description, g.price, g.image, g.created_at, g.updated_at
		FROM gigs g
		JOIN users u ON u.id = g.professional_id
		WHERE g.professional_id = $1 AND u.role = $2 AND u.status = $3
		ORDER BY g.created_at DESC, g.id
	`
	if err := r.db.SelectContext(ctx, &gigs, query, professionalID, valueobject.RoleProfessional, valueobject.AccountStatusActive); err != nil {
		return nil, fmt.Errorf("gig repository: list by active professional %w", err)
	}
	return gigs, nil
}

// Update сохраняет текстовые поля и цену объявления.
func (r *GigRepository) Update(ctx context.Context, gig *models.Gig) error {
	query := `
		UPDATE gigs
		SET title = $2, description = $3, price = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := r.db.QueryRowxContext(ctx, query, gig.ID, gig.Title, gig.Description, gig.Price).Scan(&gig.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGigNotFound
		}
		return fmt.Errorf("gig repository: update %w", err)
	}
	return nil
}

// UpdateImage заменяет изображение объявления.
func (r *GigRepository) UpdateImage(ctx context.Context, gig *models.Gig) error {
	query := `UPDATE gigs SET image = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`
	if err := r.db.QueryRowxContext(ctx, query, gig.ID, gig.Image).Scan(&gig.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGigNotFound
		}
		return fmt.Errorf("gig repository: update image %w", err)
	}
	return nil
}

// Delete удаляет объявление вместе с комментариями в одной транзакции.
func (r *GigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gig_comments WHERE gig_id = $1`, id); err != nil {
			return fmt.Errorf("gig repository: delete comments %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM gigs WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("gig repository: delete %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrGigNotFound
		}
		return nil
	})
}
