package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

func bookingEngine(user *models.User, bookings BookingService) http.Handler {
	h := NewBookingHandler(bookings)
	r := newTestEngine(user)
	r.POST("/bookings", h.Create)
	r.POST("/bookings/attachment", h.CreateWithAttachment)
	r.GET("/bookings/client", h.ListForClient)
	r.GET("/bookings/professional", h.ListForProfessional)
	r.POST("/bookings/:id/status", h.UpdateStatus)
	return r
}

func TestBookingHandler_Create(t *testing.T) {
	client := &models.User{ID: uuid.New(), Role: valueobject.RoleClient, Status: valueobject.AccountStatusActive}
	professionalID := uuid.New()

	t.Run("invalid professional id", func(t *testing.T) {
		bookings := &mockBookingService{}
		w := serve(bookingEngine(client, bookings), jsonRequest(t, http.MethodPost, "/bookings", map[string]string{
			"professional_id": "nope",
			"message":         "leak in pipe",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "professional_id must be a valid UUID", errorMessage(t, w))
		bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing professional id", func(t *testing.T) {
		bookings := &mockBookingService{}
		w := serve(bookingEngine(client, bookings), jsonRequest(t, http.MethodPost, "/bookings", map[string]string{"message": "hi"}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "professional_id is required", errorMessage(t, w))
	})

	t.Run("created as pending", func(t *testing.T) {
		bookings := &mockBookingService{}
		booking := &models.Booking{ID: uuid.New(), ClientID: client.ID, ProfessionalID: professionalID, Message: "leak in pipe", Status: valueobject.BookingStatusPending}
		bookings.On("Create", mock.Anything, client, service.CreateBookingInput{
			ProfessionalID: professionalID,
			Message:        "leak in pipe",
		}).Return(booking, nil)

		w := serve(bookingEngine(client, bookings), jsonRequest(t, http.MethodPost, "/bookings", map[string]string{
			"professional_id": professionalID.String(),
			"message":         "leak in pipe",
		}))

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var got models.Booking
		decode(t, w, &got)
		assert.Equal(t, valueobject.BookingStatusPending, got.Status)
		bookings.AssertExpectations(t)
	})

	t.Run("unknown professional", func(t *testing.T) {
		bookings := &mockBookingService{}
		bookings.On("Create", mock.Anything, client, mock.Anything).Return(nil, apperror.ErrProfessionalNotFound)

		w := serve(bookingEngine(client, bookings), jsonRequest(t, http.MethodPost, "/bookings", map[string]string{
			"professional_id": uuid.NewString(),
			"message":         "hi",
		}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingHandler_CreateWithAttachment(t *testing.T) {
	client := &models.User{ID: uuid.New(), Role: valueobject.RoleClient}
	professionalID := uuid.New()
	bookings := &mockBookingService{}
	bookings.On("Create", mock.Anything, client, mock.MatchedBy(func(in service.CreateBookingInput) bool {
		return in.ProfessionalID == professionalID && in.Message == "" && in.Image != nil
	})).Return(&models.Booking{ID: uuid.New(), Status: valueobject.BookingStatusPending}, nil)

	req := multipartRequest(t, http.MethodPost, "/bookings/attachment",
		map[string]string{"professional_id": professionalID.String()},
		map[string][]byte{"image": []byte("photo")},
	)
	w := serve(bookingEngine(client, bookings), req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bookings.AssertExpectations(t)
}

func TestBookingHandler_ListsAreWrapped(t *testing.T) {
	professional := &models.User{ID: uuid.New(), Role: valueobject.RoleProfessional}
	bookings := &mockBookingService{}
	phone := "+92 300 1234567"
	bookings.On("ListForProfessional", mock.Anything, professional.ID).Return([]models.ProfessionalBookingView{
		{Booking: models.Booking{ID: uuid.New(), Status: valueobject.BookingStatusAccepted}, Client: models.ClientIdentity{Phone: &phone}},
		{Booking: models.Booking{ID: uuid.New(), Status: valueobject.BookingStatusPending}},
	}, nil)
	bookings.On("ListForClient", mock.Anything, professional.ID).Return(nil, nil)

	w := serve(bookingEngine(professional, bookings), jsonRequest(t, http.MethodGet, "/bookings/professional", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Bookings []map[string]interface{} `json:"bookings"`
	}
	decode(t, w, &body)
	require.Len(t, body.Bookings, 2)
	assert.Equal(t, phone, body.Bookings[0]["client"].(map[string]interface{})["phone"])
	assert.NotContains(t, body.Bookings[1]["client"].(map[string]interface{}), "phone")

	w = serve(bookingEngine(professional, bookings), jsonRequest(t, http.MethodGet, "/bookings/client", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"bookings":[]}`, w.Body.String())
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	professional := &models.User{ID: uuid.New(), Role: valueobject.RoleProfessional}
	bookingID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid status", apperror.ErrInvalidBookingStatus, http.StatusBadRequest},
		{"unknown booking", apperror.ErrBookingNotFound, http.StatusNotFound},
		{"other professional", apperror.ErrForbidden, http.StatusForbidden},
		{"already decided", apperror.ErrBookingFinalized, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &mockBookingService{}
			bookings.On("UpdateStatus", mock.Anything, professional, bookingID, "accepted").Return(nil, tt.err)

			w := serve(bookingEngine(professional, bookings),
				jsonRequest(t, http.MethodPost, "/bookings/"+bookingID.String()+"/status", map[string]string{"status": "accepted"}))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("accepted", func(t *testing.T) {
		bookings := &mockBookingService{}
		bookings.On("UpdateStatus", mock.Anything, professional, bookingID, "accepted").
			Return(&models.Booking{ID: bookingID, Status: valueobject.BookingStatusAccepted}, nil)

		w := serve(bookingEngine(professional, bookings),
			jsonRequest(t, http.MethodPost, "/bookings/"+bookingID.String()+"/status", map[string]string{"status": "accepted"}))

		require.Equal(t, http.StatusOK, w.Code)
		var got models.Booking
		decode(t, w, &got)
		assert.Equal(t, valueobject.BookingStatusAccepted, got.Status)
	})
}
