package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
)

// Booking — заявка клиента конкретному профессионалу.
type Booking struct {
	ID             uuid.UUID                 `db:"id" json:"id"`
	ClientID       uuid.UUID                 `db:"client_id" json:"client_id"`
	ProfessionalID uuid.UUID                 `db:"professional_id" json:"professional_id"`
	Message        string                    `db:"message" json:"message"`
	Image          *string                   `db:"image" json:"image,omitempty"`
	Status         valueobject.BookingStatus `db:"status" json:"status"`
	CreatedAt      time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time                 `db:"updated_at" json:"updated_at"`
}

// ProfessionalIdentity публичные данные профессионала в клиентском списке заявок.
type ProfessionalIdentity struct {
	UserSummary
	Category string `json:"category"`
}

// ClientBookingView — заявка в списке клиента.
type ClientBookingView struct {
	Booking
	Professional ProfessionalIdentity `json:"professional"`
}

// ClientIdentity данные клиента для профессионала. Телефон заполняется
// только для принятых заявок.
type ClientIdentity struct {
	UserSummary
	Phone *string `json:"phone,omitempty"`
}

// ProfessionalBookingView — заявка в списке профессионала.
type ProfessionalBookingView struct {
	Booking
	Client ClientIdentity `json:"client"`
}
