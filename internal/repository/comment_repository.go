package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/eustad-backend/internal/models"
)

// CommentRepository отвечает за комментарии к объявлениям.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository создаёт экземпляр репозитория.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create сохраняет комментарий.
func (r *CommentRepository) Create(ctx context.Context, comment *models.GigComment) error {
	query := `
		INSERT INTO gig_comments (gig_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, comment.GigID, comment.AuthorID, comment.Body).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return fmt.Errorf("comment repository: create %w", err)
	}
	return nil
}

type commentRow struct {
	ID                 uuid.UUID `db:"id"`
	GigID              uuid.UUID `db:"gig_id"`
	Body               string    `db:"body"`
	CreatedAt          time.Time `db:"created_at"`
	AuthorID           uuid.UUID `db:"author_id"`
	AuthorName         string    `db:"author_name"`
	AuthorCity         *string   `db:"author_city"`
	AuthorProfileImage *string   `db:"author_profile_image"`
}

// ListByGig возвращает комментарии объявления с данными авторов, старые первыми.
func (r *CommentRepository) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.GigCommentView, error) {
	query := `
		SELECT c.id, c.gig_id, c.body, c.created_at,
			u.id AS author_id, u.name AS author_name, u.city AS author_city, u.profile_image AS author_profile_image
		FROM gig_comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.gig_id = $1
		ORDER BY c.created_at, c.id
	`
	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, gigID); err != nil {
		return nil, fmt.Errorf("comment repository: list by gig %w", err)
	}

	views := make([]models.GigCommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.GigCommentView{
			ID:        row.ID,
			GigID:     row.GigID,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
			Author: models.UserSummary{
				ID:           row.AuthorID,
				Name:         row.AuthorName,
				City:         row.AuthorCity,
				ProfileImage: row.AuthorProfileImage,
			},
		})
	}
	return views, nil
}
