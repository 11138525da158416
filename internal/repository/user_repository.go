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

var (
	// ErrUserNotFound возвращается, когда запись пользователя не найдена.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken возвращается при попытке зарегистрировать занятый email.
	ErrEmailTaken = errors.New("email already registered")
)

const userColumns = `id, email, phone, name, password_hash, role, status, city, address, profile_image, approved_at, created_at, updated_at`

const professionalCardSelect = `
	SELECT u.id, u.name, u.city, u.profile_image, u.created_at,
		p.category, p.skills, p.bio, p.is_available, p.is_verified,
		(SELECT COUNT(*) FROM gigs g WHERE g.professional_id = u.id) AS gig_count
	FROM users u
	JOIN professional_profiles p ON p.user_id = u.id
`

// UserRepository отвечает за работу с таблицами users и professional_profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт учётную запись без расширения профессионала.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

// CreateProfessional создаёт учётную запись и профиль профессионала в одной транзакции.
func (r *UserRepository) CreateProfessional(ctx context.Context, user *models.User, profile *models.ProfessionalProfile) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}

		profile.UserID = user.ID
		query := `
			INSERT INTO professional_profiles (user_id, category, skills, id_document, fee_proof, bio, is_available, is_verified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
			RETURNING updated_at
		`
		if err := tx.QueryRowxContext(
			ctx, query,
			profile.UserID, profile.Category, profile.Skills, profile.IDDocument, profile.FeeProof, profile.Bio, profile.IsAvailable,
		).Scan(&profile.UpdatedAt); err != nil {
			return fmt.Errorf("user repository: create profile %w", err)
		}
		return nil
	})
}

func insertUser(ctx context.Context, q sqlx.QueryerContext, user *models.User) error {
	query := `
		INSERT INTO users (email, phone, name, password_hash, role, status, city, address, profile_image)
		VALUES (LOWER($1), $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, email, created_at, updated_at
	`
	if err := q.QueryRowxContext(
		ctx, query,
		user.Email, user.Phone, user.Name, user.PasswordHash, user.Role, user.Status, user.City, user.Address, user.ProfileImage,
	).Scan(&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if common.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}
	return nil
}

// GetByEmail возвращает пользователя по email без учёта регистра.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}

	return &user, nil
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	return &user, nil
}

// GetProfile возвращает расширение профессионала.
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error) {
	var profile models.ProfessionalProfile
	query := `
		SELECT user_id, category, skills, id_document, fee_proof, bio, is_available, is_verified, updated_at
		FROM professional_profiles
		WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get profile %w", err)
	}

	return &profile, nil
}

// UpdateAccount сохраняет редактируемые поля учётной записи и, если profile не nil,
// профиля профессионала в одной транзакции.
func (r *UserRepository) UpdateAccount(ctx context.Context, user *models.User, profile *models.ProfessionalProfile) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := updateUser(ctx, tx, user); err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		return updateProfile(ctx, tx, profile)
	})
}

func updateUser(ctx context.Context, q sqlx.QueryerContext, user *models.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, city = $4, address = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := q.QueryRowxContext(ctx, query, user.ID, user.Name, user.Phone, user.City, user.Address).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update account %w", err)
	}
	return nil
}

func updateProfile(ctx context.Context, q sqlx.QueryerContext, profile *models.ProfessionalProfile) error {
	query := `
		UPDATE professional_profiles
		SET category = $2, skills = $3, bio = $4, is_available = $5, updated_at = NOW()
		WHERE user_id = $1
		RETURNING updated_at
	`
	if err := q.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.Category, profile.Skills, profile.Bio, profile.IsAvailable,
	).Scan(&profile.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("user repository: update profile %w", err)
	}
	return nil
}

// UpdateProfileImage заменяет аватар и возвращает ссылку на прежний файл.
func (r *UserRepository) UpdateProfileImage(ctx context.Context, userID uuid.UUID, image string) (*string, error) {
	query := `
		UPDATE users u
		SET profile_image = $2, updated_at = NOW()
		FROM (SELECT id, profile_image FROM users WHERE id = $1 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.profile_image
	`
	var previous *string
	if err := r.db.QueryRowxContext(ctx, query, userID, image).Scan(&previous); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: update profile image %w", err)
	}
	return previous, nil
}

// SearchProfessionals возвращает активных профессионалов по фильтрам в стабильном порядке.
func (r *UserRepository) SearchProfessionals(ctx context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error) {
	var where common.Where
	where.Add("u.role = ?", valueobject.RoleProfessional)
	where.Add("u.status = ?", valueobject.AccountStatusActive)
	if params.City != "" {
		where.Add("LOWER(u.city) = LOWER(?)", params.City)
	}
	if params.Category != "" {
		where.Add("p.category = ?", params.Category)
	}
	if params.Query != "" {
		where.Add("u.name ILIKE ?", common.ContainsPattern(params.Query))
	}

	query := professionalCardSelect + where.SQL() + " ORDER BY u.name, u.id" + where.Paginate(params.Limit, params.Offset)

	cards := []models.ProfessionalCard{}
	if err := r.db.SelectContext(ctx, &cards, query, where.Args()...); err != nil {
		return nil, fmt.Errorf("user repository: search professionals %w", err)
	}
	return cards, nil
}

// GetActiveProfessional возвращает публичную карточку активного профессионала.
func (r *UserRepository) GetActiveProfessional(ctx context.Context, id uuid.UUID) (*models.ProfessionalCard, error) {
	var card models.ProfessionalCard
	query := professionalCardSelect + ` WHERE u.id = $1 AND u.role = $2 AND u.status = $3`
	if err := r.db.GetContext(ctx, &card, query, id, valueobject.RoleProfessional, valueobject.AccountStatusActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get active professional %w", err)
	}
	return &card, nil
}

type pendingProfessionalRow struct {
	models.User
	Profile models.ProfessionalProfile `db:"profile"`
}

// ListPendingProfessionals возвращает заявки профессионалов, ожидающие модерации.
func (r *UserRepository) ListPendingProfessionals(ctx context.Context) ([]models.PendingProfessional, error) {
	query := `
		SELECT u.id, u.email, u.phone, u.name, u.password_hash, u.role, u.status, u.city, u.address,
			u.profile_image, u.approved_at, u.created_at, u.updated_at,
			p.user_id AS "profile.user_id", p.category AS "profile.category", p.skills AS "profile.skills",
			p.id_document AS "profile.id_document", p.fee_proof AS "profile.fee_proof", p.bio AS "profile.bio",
			p.is_available AS "profile.is_available", p.is_verified AS "profile.is_verified",
			p.updated_at AS "profile.updated_at"
		FROM users u
		JOIN professional_profiles p ON p.user_id = u.id
		WHERE u.role = $1 AND u.status = $2
		ORDER BY u.created_at, u.id
	`
	var rows []pendingProfessionalRow
	if err := r.db.SelectContext(ctx, &rows, query, valueobject.RoleProfessional, valueobject.AccountStatusPending); err != nil {
		return nil, fmt.Errorf("user repository: list pending professionals %w", err)
	}

	result := make([]models.PendingProfessional, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.PendingProfessional{User: row.User, Profile: row.Profile})
	}
	return result, nil
}

// ListUsers возвращает учётные записи для администратора.
func (r *UserRepository) ListUsers(ctx context.Context, params models.UserListParams) ([]models.User, error) {
	var where common.Where
	if params.Role != "" {
		where.Add("role = ?", params.Role)
	}
	if params.Status != "" {
		where.Add("status = ?", params.Status)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where.SQL() + " ORDER BY created_at DESC, id" + where.Paginate(params.Limit, params.Offset)

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, where.Args()...); err != nil {
		return nil, fmt.Errorf("user repository: list users %w", err)
	}
	return users, nil
}

// DecidePending переводит ожидающего профессионала в active или rejected.
// Обновление условное: если статус уже изменился, возвращается common.ErrConflict.
func (r *UserRepository) DecidePending(ctx context.Context, userID uuid.UUID, to valueobject.AccountStatus) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE users
			SET status = $2,
				approved_at = CASE WHEN $2 = 'active' THEN NOW() ELSE approved_at END,
				updated_at = NOW()
			WHERE id = $1 AND role = $3 AND status = $4
		`
		res, err := tx.ExecContext(ctx, query, userID, to, valueobject.RoleProfessional, valueobject.AccountStatusPending)
		if err != nil {
			return fmt.Errorf("user repository: decide pending %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("user repository: decide pending rows %w", err)
		}
		if affected == 0 {
			return common.ErrConflict
		}

		if to == valueobject.AccountStatusActive {
			if _, err := tx.ExecContext(ctx, `UPDATE professional_profiles SET is_verified = TRUE, updated_at = NOW() WHERE user_id = $1`, userID); err != nil {
				return fmt.Errorf("user repository: verify profile %w", err)
			}
		}
		return nil
	})
}
