package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eustad-backend/internal/http/middleware"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEngine собирает движок с ErrorHandler. user, если задан, кладётся в контекст
// так же, как это делает AuthMiddleware.
func newTestEngine(user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, user.ID)
			c.Set(middleware.ContextRoleKey, user.Role)
			c.Set(middleware.ContextUserKey, user)
			c.Next()
		})
	}
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest формирует multipart запрос; files — имя поля → содержимое.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) RegisterClient(ctx context.Context, in service.RegisterClientInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*service.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) RegisterProfessional(ctx context.Context, in service.RegisterProfessionalInput) (*service.Account, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*service.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if v := args.Get(0); v != nil {
		return v.(*service.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID uuid.UUID) (*service.Account, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*service.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) UpdateMe(ctx context.Context, userID uuid.UUID, in service.UpdateAccountInput) (*service.Account, error) {
	args := m.Called(ctx, userID, in)
	if v := args.Get(0); v != nil {
		return v.(*service.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) (*service.Account, error) {
	args := m.Called(ctx, userID, image)
	if v := args.Get(0); v != nil {
		return v.(*service.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGigService struct{ mock.Mock }

func (m *mockGigService) Create(ctx context.Context, owner *models.User, in service.GigInput) (*models.Gig, error) {
	args := m.Called(ctx, owner, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Gig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGigService) Get(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Gig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGigService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]models.Gig, error) {
	args := m.Called(ctx, ownerID)
	gigs, _ := args.Get(0).([]models.Gig)
	return gigs, args.Error(1)
}

func (m *mockGigService) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Gig, error) {
	args := m.Called(ctx, professionalID)
	gigs, _ := args.Get(0).([]models.Gig)
	return gigs, args.Error(1)
}

func (m *mockGigService) Update(ctx context.Context, actorID, gigID uuid.UUID, in service.GigInput) (*models.Gig, error) {
	args := m.Called(ctx, actorID, gigID, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Gig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGigService) UpdateImage(ctx context.Context, actorID, gigID uuid.UUID, image io.Reader) (*models.Gig, error) {
	args := m.Called(ctx, actorID, gigID, image)
	if v := args.Get(0); v != nil {
		return v.(*models.Gig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGigService) Delete(ctx context.Context, actorID, gigID uuid.UUID) error {
	return m.Called(ctx, actorID, gigID).Error(0)
}

type mockCommentService struct{ mock.Mock }

func (m *mockCommentService) Create(ctx context.Context, author *models.User, gigID uuid.UUID, text string) (*models.GigCommentView, error) {
	args := m.Called(ctx, author, gigID, text)
	if v := args.Get(0); v != nil {
		return v.(*models.GigCommentView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCommentService) ListByGig(ctx context.Context, gigID uuid.UUID) ([]models.GigCommentView, error) {
	args := m.Called(ctx, gigID)
	comments, _ := args.Get(0).([]models.GigCommentView)
	return comments, args.Error(1)
}

type mockBookingService struct{ mock.Mock }

func (m *mockBookingService) Create(ctx context.Context, client *models.User, in service.CreateBookingInput) (*models.Booking, error) {
	args := m.Called(ctx, client, in)
	if v := args.Get(0); v != nil {
		return v.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookingService) ListForClient(ctx context.Context, clientID uuid.UUID) ([]models.ClientBookingView, error) {
	args := m.Called(ctx, clientID)
	views, _ := args.Get(0).([]models.ClientBookingView)
	return views, args.Error(1)
}

func (m *mockBookingService) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.ProfessionalBookingView, error) {
	args := m.Called(ctx, professionalID)
	views, _ := args.Get(0).([]models.ProfessionalBookingView)
	return views, args.Error(1)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, actor *models.User, bookingID uuid.UUID, status string) (*models.Booking, error) {
	args := m.Called(ctx, actor, bookingID, status)
	if v := args.Get(0); v != nil {
		return v.(*models.Booking), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) Approve(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) Reject(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAdminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAdminService) ListPendingProfessionals(ctx context.Context) ([]models.PendingProfessional, error) {
	args := m.Called(ctx)
	pending, _ := args.Get(0).([]models.PendingProfessional)
	return pending, args.Error(1)
}

func (m *mockAdminService) ListUsers(ctx context.Context, params models.UserListParams) ([]models.User, error) {
	args := m.Called(ctx, params)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockAdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*models.PlatformStats), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockProfessionalService struct{ mock.Mock }

func (m *mockProfessionalService) Search(ctx context.Context, params models.ProfessionalSearchParams) ([]models.ProfessionalCard, error) {
	args := m.Called(ctx, params)
	cards, _ := args.Get(0).([]models.ProfessionalCard)
	return cards, args.Error(1)
}

func (m *mockProfessionalService) Get(ctx context.Context, id uuid.UUID) (*service.ProfessionalDetails, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*service.ProfessionalDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfessionalService) Categories() []string {
	return m.Called().Get(0).([]string)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset, unreadOnly)
	items, _ := args.Get(0).([]models.Notification)
	return items, args.Error(1)
}

func (m *mockNotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockNotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockNotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}
