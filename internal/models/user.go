package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
)

// User описывает учётную запись платформы: клиента, профессионала или администратора.
type User struct {
	ID           uuid.UUID                 `db:"id" json:"id"`
	Email        string                    `db:"email" json:"email"`
	Phone        string                    `db:"phone" json:"phone"`
	Name         string                    `db:"name" json:"name"`
	PasswordHash *string                   `db:"password_hash" json:"-"`
	Role         valueobject.Role          `db:"role" json:"role"`
	Status       valueobject.AccountStatus `db:"status" json:"status"`
	City         *string                   `db:"city" json:"city,omitempty"`
	Address      *string                   `db:"address" json:"address,omitempty"`
	ProfileImage *string                   `db:"profile_image" json:"profile_image,omitempty"`
	ApprovedAt   *time.Time                `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt    time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time                 `db:"updated_at" json:"updated_at"`
}

func (u *User) IsProfessional() bool {
	return u.Role == valueobject.RoleProfessional
}

func (u *User) IsActive() bool {
	return u.Status == valueobject.AccountStatusActive
}

// ProfessionalProfile — расширение учётной записи профессионала (один к одному).
type ProfessionalProfile struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Category    string    `db:"category" json:"category"`
	Skills      string    `db:"skills" json:"skills"`
	IDDocument  string    `db:"id_document" json:"id_document"`
	FeeProof    string    `db:"fee_proof" json:"fee_proof"`
	Bio         string    `db:"bio" json:"bio"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	IsVerified  bool      `db:"is_verified" json:"is_verified"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary — публичная идентичность участника, прикладываемая к заявкам и комментариям.
type UserSummary struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	City         *string   `db:"city" json:"city,omitempty"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
}

// ProfessionalCard — запись в выдаче поиска профессионалов.
type ProfessionalCard struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	City         *string   `db:"city" json:"city,omitempty"`
	ProfileImage *string   `db:"profile_image" json:"profile_image,omitempty"`
	Category     string    `db:"category" json:"category"`
	Skills       string    `db:"skills" json:"skills"`
	Bio          string    `db:"bio" json:"bio"`
	IsAvailable  bool      `db:"is_available" json:"is_available"`
	IsVerified   bool      `db:"is_verified" json:"is_verified"`
	GigCount     int       `db:"gig_count" json:"gig_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProfessionalSearchParams параметры поиска профессионалов.
type ProfessionalSearchParams struct {
	City     string
	Category string
	Query    string
	Limit    int
	Offset   int
}

// UserListParams фильтры административного списка аккаунтов.
type UserListParams struct {
	Role   string
	Status string
	Limit  int
	Offset int
}

// PendingProfessional — заявка профессионала на модерации вместе с документами.
type PendingProfessional struct {
	User    User                `json:"user"`
	Profile ProfessionalProfile `json:"profile"`
}

// PlatformStats агрегированные счётчики для панели администратора.
type PlatformStats struct {
	Clients               int `db:"clients" json:"clients"`
	Professionals         int `db:"professionals" json:"professionals"`
	ActiveProfessionals   int `db:"active_professionals" json:"active_professionals"`
	PendingProfessionals  int `db:"pending_professionals" json:"pending_professionals"`
	RejectedProfessionals int `db:"rejected_professionals" json:"rejected_professionals"`
	Gigs                  int `db:"gigs" json:"gigs"`
	Comments              int `db:"comments" json:"comments"`
	Bookings              int `db:"bookings" json:"bookings"`
	PendingBookings       int `db:"pending_bookings" json:"pending_bookings"`
	AcceptedBookings      int `db:"accepted_bookings" json:"accepted_bookings"`
	RejectedBookings      int `db:"rejected_bookings" json:"rejected_bookings"`
}
