package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/models"
	"github.com/ignatzorin/eustad-backend/internal/pkg/apperror"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/validation"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateProfessional(ctx context.Context, user *models.User, profile *models.ProfessionalProfile) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.ProfessionalProfile, error)
	UpdateAccount(ctx context.Context, user *models.User, profile *models.ProfessionalProfile) error
	UpdateProfileImage(ctx context.Context, userID uuid.UUID, image string) (*string, error)
}

// AuthService инкапсулирует бизнес-логику регистрации и аутентификации.
type AuthService struct {
	repo         AuthRepository
	tokenManager *TokenManager
	images       ImageStore
}

// RegisterClientInput содержит данные клиента при регистрации.
type RegisterClientInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	City     *string
	Address  *string
}

// RegisterProfessionalInput содержит данные и документы профессионала.
type RegisterProfessionalInput struct {
	Name         string
	Email        string
	Phone        string
	Password     string
	City         string
	Address      *string
	Category     string
	Skills       string
	Bio          string
	ProfileImage io.Reader
	IDDocument   io.Reader
	FeeProof     io.Reader
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateAccountInput содержит изменяемые поля. nil означает «не менять».
type UpdateAccountInput struct {
	Name        *string
	Phone       *string
	City        *string
	Address     *string
	Category    *string
	Skills      *string
	Bio         *string
	IsAvailable *bool
}

// Account — учётная запись вместе с расширением профессионала.
type Account struct {
	User    *models.User                `json:"user"`
	Profile *models.ProfessionalProfile `json:"profile,omitempty"`
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	Account
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, tokenManager *TokenManager, images ImageStore) *AuthService {
	return &AuthService{
		repo:         repo,
		tokenManager: tokenManager,
		images:       images,
	}
}

// RegisterClient создаёт активного клиента и выпускает сессию.
func (s *AuthService) RegisterClient(ctx context.Context, in RegisterClientInput) (*AuthResult, error) {
	if err := validateIdentity(in.Name, in.Email, in.Phone, in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateOptional("city", in.City, validation.MaxCityLength); err != nil {
		return nil, apperror.Validation(err)
	}
	if err := validation.ValidateOptional("address", in.Address, validation.MaxAddressLength); err != nil {
		return nil, apperror.Validation(err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: &hash,
		Role:         valueobject.RoleClient,
		Status:       valueobject.InitialAccountStatus(valueobject.RoleClient),
		City:         trimmedOrNil(in.City),
		Address:      trimmedOrNil(in.Address),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, apperror.Internal(err)
	}

	return s.issue(&Account{User: user})
}

// RegisterProfessional создаёт профессионала в статусе pending вместе с профилем.
// Все документы обязательны; при любой ошибке ничего не сохраняется.
func (s *AuthService) RegisterProfessional(ctx context.Context, in RegisterProfessionalInput) (*Account, error) {
	if err := validateIdentity(in.Name, in.Email, in.Phone, in.Password); err != nil {
		return nil, err
	}
	if err := validateProfessionalFields(in); err != nil {
		return nil, apperror.Validation(err)
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var saved []string
	uploads := []struct {
		field  string
		folder string
		r      io.Reader
	}{
		{"profile_image", FolderProfiles, in.ProfileImage},
		{"id_document", FolderDocuments, in.IDDocument},
		{"fee_proof", FolderDocuments, in.FeeProof},
	}
	for _, up := range uploads {
		ref, err := saveImage(ctx, s.images, up.folder, up.field, up.r)
		if err != nil {
			discardFiles(ctx, s.images, saved...)
			return nil, err
		}
		saved = append(saved, ref)
	}

	user := &models.User{
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: &hash,
		Role:         valueobject.RoleProfessional,
		Status:       valueobject.InitialAccountStatus(valueobject.RoleProfessional),
		City:         trimmedOrNil(&in.City),
		Address:      trimmedOrNil(in.Address),
		ProfileImage: &saved[0],
	}
	profile := &models.ProfessionalProfile{
		Category:    in.Category,
		Skills:      strings.TrimSpace(in.Skills),
		IDDocument:  saved[1],
		FeeProof:    saved[2],
		Bio:         strings.TrimSpace(in.Bio),
		IsAvailable: true,
	}

	if err := s.repo.CreateProfessional(ctx, user, profile); err != nil {
		discardFiles(ctx, s.images, saved...)
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.ErrEmailTaken
		}
		return nil, apperror.Internal(err)
	}

	return &Account{User: user, Profile: profile}, nil
}

// Login проверяет учётные данные и статус учётной записи.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperror.Validation(fmt.Errorf("email and password are required"))
	}

	user, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal(err)
	}

	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, apperror.ErrPasswordNotSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	// Статус проверяется только после верного пароля
	switch user.Status {
	case valueobject.AccountStatusPending:
		return nil, apperror.ErrAccountPending
	case valueobject.AccountStatusRejected:
		return nil, apperror.ErrAccountRejected
	}

	account, err := s.loadAccount(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

// Authenticate разрешает сессионный токен в учётную запись.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, _, err := s.tokenManager.Parse(token)
	if err != nil {
		return nil, apperror.ErrSessionInvalid
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrSessionInvalid
		}
		return nil, apperror.Internal(err)
	}

	if !user.IsActive() {
		return nil, apperror.ErrSessionInvalid
	}

	return user, nil
}

// Me возвращает учётную запись текущего пользователя.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*Account, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	return s.loadAccount(ctx, user)
}

// UpdateMe сохраняет изменения профиля текущего пользователя.
func (s *AuthService) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateAccountInput) (*Account, error) {
	account, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := account.User

	if in.Name != nil {
		if err := validation.ValidateName(*in.Name); err != nil {
			return nil, apperror.Validation(err)
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		if err := validation.ValidatePhone(*in.Phone); err != nil {
			return nil, apperror.Validation(err)
		}
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.City != nil {
		if err := validation.ValidateOptional("city", in.City, validation.MaxCityLength); err != nil {
			return nil, apperror.Validation(err)
		}
		if user.IsProfessional() && strings.TrimSpace(*in.City) == "" {
			return nil, apperror.Validation(fmt.Errorf("city is required"))
		}
		user.City = trimmedOrNil(in.City)
	}
	if in.Address != nil {
		if err := validation.ValidateOptional("address", in.Address, validation.MaxAddressLength); err != nil {
			return nil, apperror.Validation(err)
		}
		user.Address = trimmedOrNil(in.Address)
	}

	var profile *models.ProfessionalProfile
	if in.Category != nil || in.Skills != nil || in.Bio != nil || in.IsAvailable != nil {
		if account.Profile == nil {
			return nil, apperror.ErrNotProfessional
		}
		if err := applyProfileChanges(account.Profile, in); err != nil {
			return nil, apperror.Validation(err)
		}
		profile = account.Profile
	}

	if err := s.repo.UpdateAccount(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}

	return account, nil
}

// UpdateAvatar заменяет аватар; прежний файл удаляется.
func (s *AuthService) UpdateAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) (*Account, error) {
	if image == nil {
		return nil, apperror.Validation(fmt.Errorf("profile_image is required"))
	}

	ref, err := saveImage(ctx, s.images, FolderProfiles, "profile_image", image)
	if err != nil {
		return nil, err
	}

	previous, err := s.repo.UpdateProfileImage(ctx, userID, ref)
	if err != nil {
		discardFiles(ctx, s.images, ref)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Internal(err)
	}
	discardFiles(ctx, s.images, derefOr(previous))

	return s.Me(ctx, userID)
}

// SessionTTL возвращает срок жизни сессии для cookie.
func (s *AuthService) SessionTTL() time.Duration {
	return s.tokenManager.TTL()
}

func (s *AuthService) loadAccount(ctx context.Context, user *models.User) (*Account, error) {
	account := &Account{User: user}
	if !user.IsProfessional() {
		return account, nil
	}

	profile, err := s.repo.GetProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return account, nil
		}
		return nil, apperror.Internal(err)
	}
	account.Profile = profile
	return account, nil
}

func (s *AuthService) issue(account *Account) (*AuthResult, error) {
	token, exp, err := s.tokenManager.Issue(account.User)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("auth service: issue token: %w", err))
	}
	return &AuthResult{Account: *account, Token: token, ExpiresAt: exp}, nil
}

func applyProfileChanges(profile *models.ProfessionalProfile, in UpdateAccountInput) error {
	if in.Category != nil {
		if err := validation.ValidateCategory(*in.Category); err != nil {
			return err
		}
		profile.Category = *in.Category
	}
	if in.Skills != nil {
		if err := validation.ValidateOptional("skills", in.Skills, validation.MaxSkillsLength); err != nil {
			return err
		}
		profile.Skills = strings.TrimSpace(*in.Skills)
	}
	if in.Bio != nil {
		if err := validation.ValidateOptional("bio", in.Bio, validation.MaxBioLength); err != nil {
			return err
		}
		profile.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.IsAvailable != nil {
		profile.IsAvailable = *in.IsAvailable
	}
	return nil
}

func validateIdentity(name, email, phone, password string) error {
	if err := validation.ValidateName(name); err != nil {
		return apperror.Validation(err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return apperror.Validation(err)
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return apperror.Validation(err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return apperror.Validation(err)
	}
	return nil
}

func validateProfessionalFields(in RegisterProfessionalInput) error {
	if in.ProfileImage == nil {
		return fmt.Errorf("profile_image is required")
	}
	if in.IDDocument == nil {
		return fmt.Errorf("id_document is required")
	}
	if in.FeeProof == nil {
		return fmt.Errorf("fee_proof is required")
	}
	if err := validation.ValidateCategory(in.Category); err != nil {
		return err
	}
	if err := validation.ValidateCity(in.City); err != nil {
		return err
	}
	if err := validation.ValidateOptional("address", in.Address, validation.MaxAddressLength); err != nil {
		return err
	}
	if err := validation.ValidateLength("skills", strings.TrimSpace(in.Skills), 0, validation.MaxSkillsLength); err != nil {
		return err
	}
	return validation.ValidateLength("bio", strings.TrimSpace(in.Bio), 0, validation.MaxBioLength)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("auth service: hash password: %w", err))
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
