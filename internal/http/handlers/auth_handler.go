package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/eustad-backend/internal/http/handlers/common"
	"github.com/ignatzorin/eustad-backend/internal/service"
)

// AuthService — операции учётных записей, которые нужны HTTP слою.
type AuthService interface {
	RegisterClient(ctx context.Context, in service.RegisterClientInput) (*service.AuthResult, error)
	RegisterProfessional(ctx context.Context, in service.RegisterProfessionalInput) (*service.Account, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	Me(ctx context.Context, userID uuid.UUID) (*service.Account, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, in service.UpdateAccountInput) (*service.Account, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, image io.Reader) (*service.Account, error)
}

// SessionCookie описывает параметры сессионной cookie.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (s SessionCookie) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, int(s.TTL.Seconds()), "/", "", s.Secure, true)
}

func (s SessionCookie) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

// AuthHandler предоставляет HTTP слой для регистрации, входа и профиля.
type AuthHandler struct {
	auth   AuthService
	cookie SessionCookie
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth AuthService, cookie SessionCookie) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// RegisterClient обрабатывает POST /auth/register/client.
func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Phone    string  `json:"phone"`
		Password string  `json:"password"`
		City     *string `json:"city"`
		Address  *string `json:"address"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.RegisterClient(c.Request.Context(), service.RegisterClientInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		City:     req.City,
		Address:  req.Address,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.cookie.set(c, result.Token)
	c.JSON(http.StatusCreated, result.Account)
}

// RegisterProfessional обрабатывает POST /auth/register/professional (multipart).
func (h *AuthHandler) RegisterProfessional(c *gin.Context) {
	files, err := common.FormFiles(c, "profile_image", "id_document", "fee_proof")
	if err != nil {
		common.Fail(c, err)
		return
	}
	defer common.CloseAll(files)

	in := service.RegisterProfessionalInput{
		Name:         c.PostForm("name"),
		Email:        c.PostForm("email"),
		Phone:        c.PostForm("phone"),
		Password:     c.PostForm("password"),
		City:         c.PostForm("city"),
		Category:     c.PostForm("category"),
		Skills:       c.PostForm("skills"),
		Bio:          c.PostForm("bio"),
		ProfileImage: files["profile_image"],
		IDDocument:   files["id_document"],
		FeeProof:     files["fee_proof"],
	}
	if address, ok := c.GetPostForm("address"); ok {
		in.Address = &address
	}

	account, err := h.auth.RegisterProfessional(c.Request.Context(), in)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    account.User,
		"profile": account.Profile,
		"message": "registration submitted, awaiting admin approval",
	})
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	h.cookie.set(c, result.Token)
	c.JSON(http.StatusOK, result.Account)
}

// Logout обрабатывает POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me обрабатывает GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	account, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateMe обрабатывает PUT /auth/me.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Phone       *string `json:"phone"`
		City        *string `json:"city"`
		Address     *string `json:"address"`
		Category    *string `json:"category"`
		Skills      *string `json:"skills"`
		Bio         *string `json:"bio"`
		IsAvailable *bool   `json:"is_available"`
	}
	if err := common.BindJSON(c, &req); err != nil {
		common.Fail(c, err)
		return
	}

	account, err := h.auth.UpdateMe(c.Request.Context(), userID, service.UpdateAccountInput{
		Name:        req.Name,
		Phone:       req.Phone,
		City:        req.City,
		Address:     req.Address,
		Category:    req.Category,
		Skills:      req.Skills,
		Bio:         req.Bio,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateAvatar обрабатывает PUT /auth/me/avatar (multipart profile_image).
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.Fail(c, err)
		return
	}

	file, err := common.OptionalFile(c, "profile_image")
	if err != nil {
		common.Fail(c, err)
		return
	}
	var image io.Reader
	if file != nil {
		defer file.Close()
		image = file
	}

	account, err := h.auth.UpdateAvatar(c.Request.Context(), userID, image)
	if err != nil {
		common.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
