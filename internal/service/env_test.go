package service

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/storage"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

// testEnv собирает сервисы поверх in-memory хранилища и временного каталога загрузок.
type testEnv struct {
	db            *memDB
	uploads       string
	images        *storage.ImageStorage
	notifier      *mockNotifier
	cache         *CacheService
	auth          *AuthService
	professionals *ProfessionalService
	gigs          *GigService
	comments      *CommentService
	bookings      *BookingService
	admin         *AdminService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploads := t.TempDir()
	images, err := storage.NewImageStorage(uploads, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db := newMemDB()
	users := memUsers{db}
	gigRepo := memGigs{db}

	env := &testEnv{
		db:       db,
		uploads:  uploads,
		images:   images,
		notifier: &mockNotifier{},
		cache:    NewCacheService(ctx),
	}
	env.auth = NewAuthService(users, NewTokenManager("test-secret", time.Hour), images)
	env.professionals = NewProfessionalService(users, gigRepo)
	env.gigs = NewGigService(gigRepo, images)
	env.comments = NewCommentService(memComments{db}, env.gigs)
	env.bookings = NewBookingService(memBookings{db}, users, images, env.notifier)
	env.admin = NewAdminService(users, memAdmin{db}, images, env.cache, time.Minute)
	env.notifications = NewNotificationService(memNotifications{db})
	return env
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func pngReader() io.Reader {
	body := make([]byte, 256)
	copy(body, pngHeader)
	return bytes.NewReader(body)
}

// storedFiles возвращает относительные пути всех файлов в каталоге загрузок.
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(e.uploads, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(e.uploads, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func (e *testEnv) registerClient(t *testing.T, name, email, phone string) *models.User {
	t.Helper()
	city := "Lahore"
	res, err := e.auth.RegisterClient(context.Background(), RegisterClientInput{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: "Secret123",
		City:     &city,
	})
	require.NoError(t, err)
	return res.User
}

func professionalInput(name, email, category string) RegisterProfessionalInput {
	return RegisterProfessionalInput{
		Name:         name,
		Email:        email,
		Phone:        "+92 300 7654321",
		Password:     "Secret123",
		City:         "Lahore",
		Category:     category,
		Skills:       "pipes, fittings",
		Bio:          "Ten years of experience",
		ProfileImage: pngReader(),
		IDDocument:   pngReader(),
		FeeProof:     pngReader(),
	}
}

func (e *testEnv) registerProfessional(t *testing.T, name, email, category string) *models.User {
	t.Helper()
	account, err := e.auth.RegisterProfessional(context.Background(), professionalInput(name, email, category))
	require.NoError(t, err)
	return account.User
}

// activeProfessional регистрирует и сразу одобряет профессионала.
func (e *testEnv) activeProfessional(t *testing.T, name, email, category string) *models.User {
	t.Helper()
	pro := e.registerProfessional(t, name, email, category)
	approved, err := e.admin.Approve(context.Background(), pro.ID)
	require.NoError(t, err)
	return approved
}
