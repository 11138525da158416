package models

import (
	"time"

	"github.com/google/uuid"
)

// Gig — объявление об услуге, принадлежащее одному профессионалу.
type Gig struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ProfessionalID uuid.UUID `db:"professional_id" json:"professional_id"`
	Title          string    `db:"title" json:"title"`
	Description    string    `db:"description" json:"description"`
	Price          float64   `db:"price" json:"price"`
	Image          *string   `db:"image" json:"image,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// GigComment — отзыв-комментарий к объявлению.
type GigComment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GigID     uuid.UUID `db:"gig_id" json:"gig_id"`
	AuthorID  uuid.UUID `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GigCommentView — комментарий с данными автора. Единственная форма ответа для списка.
type GigCommentView struct {
	ID        uuid.UUID   `json:"id"`
	GigID     uuid.UUID   `json:"gig_id"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"created_at"`
	Author    UserSummary `json:"author"`
}
