package valueobject

import "github.com/ignatzorin/eustad-backend/internal/pkg/apperror"

type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus — состояние учётной записи. Профессионал проходит
// pending -> active | rejected, клиент сразу active.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusPending  AccountStatus = "pending"
	AccountStatusRejected AccountStatus = "rejected"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusPending, AccountStatusRejected:
		return true
	}
	return false
}

func (s AccountStatus) CanTransitionTo(newStatus AccountStatus) bool {
	return s == AccountStatusPending && (newStatus == AccountStatusActive || newStatus == AccountStatusRejected)
}

// InitialAccountStatus возвращает статус, с которым создаётся аккаунт указанной роли.
func InitialAccountStatus(role Role) AccountStatus {
	if role == RoleProfessional {
		return AccountStatusPending
	}
	return AccountStatusActive
}

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

// IsTerminal сообщает, что после этого статуса переходы запрещены.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusAccepted || s == BookingStatusRejected
}

// NewBookingDecision разбирает статус, который профессионал может выставить заявке.
func NewBookingDecision(status string) (BookingStatus, error) {
	s := BookingStatus(status)
	if s != BookingStatusAccepted && s != BookingStatusRejected {
		return "", apperror.ErrInvalidBookingStatus
	}
	return s, nil
}
