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

// AdminRepository выполняет административные операции над несколькими таблицами.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository создаёт экземпляр репозитория.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// cascadeStep — один DELETE каскада. Шаги с withRefs возвращают ссылки на файлы
// удалённых строк, остальные выполняются без выборки.
type cascadeStep struct {
	name     string
	query    string
	withRefs bool
}

var accountCascade = []cascadeStep{
	{name: "notifications", query: `DELETE FROM notifications WHERE user_id = $1`},
	{name: "bookings", withRefs: true, query: `
		WITH removed AS (DELETE FROM bookings WHERE client_id = $1 OR professional_id = $1 RETURNING image)
		SELECT image FROM removed WHERE image IS NOT NULL AND image <> ''
	`},
	{name: "authored comments", query: `DELETE FROM gig_comments WHERE author_id = $1`},
}

var professionalCascade = []cascadeStep{
	{name: "gig comments", query: `DELETE FROM gig_comments WHERE gig_id IN (SELECT id FROM gigs WHERE professional_id = $1)`},
	{name: "gigs", withRefs: true, query: `
		WITH removed AS (DELETE FROM gigs WHERE professional_id = $1 RETURNING image)
		SELECT image FROM removed WHERE image IS NOT NULL AND image <> ''
	`},
	{name: "profile", withRefs: true, query: `
		WITH removed AS (DELETE FROM professional_profiles WHERE user_id = $1 RETURNING id_document, fee_proof)
		SELECT ref FROM removed CROSS JOIN LATERAL unnest(ARRAY[removed.id_document, removed.fee_proof]) AS ref
		WHERE ref IS NOT NULL AND ref <> ''
	`},
}

// DeleteUserCascade удаляет учётную запись и все зависящие от неё записи в одной транзакции.
// Возвращает ссылки на загруженные файлы удалённых записей для последующей очистки.
func (r *AdminRepository) DeleteUserCascade(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var files []string

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var account struct {
			Role         valueobject.Role `db:"role"`
			ProfileImage sql.NullString   `db:"profile_image"`
		}
		if err := tx.GetContext(ctx, &account, `SELECT role, profile_image FROM users WHERE id = $1 FOR UPDATE`, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("admin repository: lock user %w", err)
		}

		steps := accountCascade
		if account.Role == valueobject.RoleProfessional {
			steps = append(append([]cascadeStep{}, accountCascade...), professionalCascade...)
		}

		for _, step := range steps {
			if !step.withRefs {
				if _, err := tx.ExecContext(ctx, step.query, userID); err != nil {
					return fmt.Errorf("admin repository: delete %s %w", step.name, err)
				}
				continue
			}

			var refs []sql.NullString
			if err := tx.SelectContext(ctx, &refs, step.query, userID); err != nil {
				return fmt.Errorf("admin repository: delete %s %w", step.name, err)
			}
			files = appendRefs(files, refs...)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			return fmt.Errorf("admin repository: delete user %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return ErrUserNotFound
		}

		files = appendRefs(files, account.ProfileImage)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func appendRefs(dst []string, refs ...sql.NullString) []string {
	for _, ref := range refs {
		if ref.Valid && ref.String != "" {
			dst = append(dst, ref.String)
		}
	}
	return dst
}

// Stats возвращает агрегированные счётчики платформы.
func (r *AdminRepository) Stats(ctx context.Context) (*models.PlatformStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'client') AS clients,
			(SELECT COUNT(*) FROM users WHERE role = 'professional') AS professionals,
			(SELECT COUNT(*) FROM users WHERE role = 'professional' AND status = 'active') AS active_professionals,
			(SELECT COUNT(*) FROM users WHERE role = 'professional' AND status = 'pending') AS pending_professionals,
			(SELECT COUNT(*) FROM users WHERE role = 'professional' AND status = 'rejected') AS rejected_professionals,
			(SELECT COUNT(*) FROM gigs) AS gigs,
			(SELECT COUNT(*) FROM gig_comments) AS comments,
			(SELECT COUNT(*) FROM bookings) AS bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'pending') AS pending_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'accepted') AS accepted_bookings,
			(SELECT COUNT(*) FROM bookings WHERE status = 'rejected') AS rejected_bookings
	`
	var stats models.PlatformStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("admin repository: stats %w", err)
	}
	return &stats, nil
}
