package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/repository/common"
)

var bookingRowColumns = []string{"id", "client_id", "professional_id", "message", "image", "status", "created_at", "updated_at"}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	bookingID, professionalID, clientID := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("pending booking is decided", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(sqlLike("WHERE b.id = $1 AND b.professional_id = $2 AND b.status = $4")).
			WithArgs(bookingID, professionalID, valueobject.BookingStatusAccepted, valueobject.BookingStatusPending).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns).
				AddRow(bookingID.String(), clientID.String(), professionalID.String(), "leak", nil, "accepted", now, now))

		booking, err := NewBookingRepository(db).UpdateStatus(context.Background(), bookingID, professionalID, valueobject.BookingStatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, valueobject.BookingStatusAccepted, booking.Status)
		assert.Equal(t, clientID, booking.ClientID)
		assert.Nil(t, booking.Image)
	})

	t.Run("no pending row is a conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(sqlLike("UPDATE bookings b")).
			WithArgs(bookingID, professionalID, valueobject.BookingStatusRejected, valueobject.BookingStatusPending).
			WillReturnRows(sqlmock.NewRows(bookingRowColumns))

		booking, err := NewBookingRepository(db).UpdateStatus(context.Background(), bookingID, professionalID, valueobject.BookingStatusRejected)

		assert.ErrorIs(t, err, common.ErrConflict)
		assert.Nil(t, booking)
	})
}

func TestBookingRepository_ListForProfessional_PhoneOnlyWhenAccepted(t *testing.T) {
	db, mock := newMockDB(t)
	professionalID, clientID := uuid.New(), uuid.New()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	columns := append(append([]string{}, bookingRowColumns...), "party_name", "party_city", "party_profile_image", "party_phone")

	mock.ExpectQuery(sqlLike("CASE WHEN b.status = $2 THEN u.phone END AS party_phone")).
		WithArgs(professionalID, valueobject.BookingStatusAccepted).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), clientID.String(), professionalID.String(), "leak", "bookings/a.png", "accepted", now, now,
				"Ayesha", "Lahore", nil, "+92 300 1234567").
			AddRow(uuid.NewString(), clientID.String(), professionalID.String(), "wiring", nil, "pending", now, now,
				"Ayesha", "Lahore", nil, nil))

	views, err := NewBookingRepository(db).ListForProfessional(context.Background(), professionalID)

	require.NoError(t, err)
	require.Len(t, views, 2)
	require.NotNil(t, views[0].Client.Phone)
	assert.Equal(t, "+92 300 1234567", *views[0].Client.Phone)
	assert.Equal(t, clientID, views[0].Client.ID)
	assert.Equal(t, "Ayesha", views[0].Client.Name)
	assert.Nil(t, views[1].Client.Phone)
}
