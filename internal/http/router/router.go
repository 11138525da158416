package router

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/eustad-backend/internal/config"
	"github.com/ignatzorin/eustad-backend/internal/domain/valueobject"
	"github.com/ignatzorin/eustad-backend/internal/http/handlers"
	"github.com/ignatzorin/eustad-backend/internal/http/middleware"
)

// Handlers собирает HTTP хэндлеры приложения.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Professionals *handlers.ProfessionalHandler
	Gigs          *handlers.GigHandler
	Comments      *handlers.CommentHandler
	Bookings      *handlers.BookingHandler
	Admin         *handlers.AdminHandler
	Notifications *handlers.NotificationHandler
	WS            *handlers.WSHandler
	Health        *handlers.HealthHandler
}

// Dependencies — инфраструктура, которой пользуются middleware.
type Dependencies struct {
	Sessions       middleware.SessionAuthenticator
	AdminPolicy    *middleware.AdminPolicy
	RateLimitStore limiter.Store
	SentryEnabled  bool
}

// SetupRouter регистрирует middleware и маршруты.
func SetupRouter(cfg *config.Config, deps Dependencies, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	r.Use(gin.Recovery())
	if deps.SentryEnabled {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.ErrorHandler())

	r.GET("/health", h.Health.Health)
	r.Static("/uploads", cfg.UploadsPath)

	requireSession := middleware.AuthMiddleware(deps.Sessions, cfg.SessionCookieName)
	clientOnly := middleware.RequireRoles(valueobject.RoleClient)
	professionalOnly := middleware.RequireRoles(valueobject.RoleProfessional)

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(deps.RateLimitStore, cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register/client", h.Auth.RegisterClient)
		authGroup.POST("/register/professional", h.Auth.RegisterProfessional)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	me := r.Group("/auth/me")
	me.Use(requireSession)
	{
		me.GET("", h.Auth.Me)
		me.PUT("", h.Auth.UpdateMe)
		me.PUT("/avatar", h.Auth.UpdateAvatar)
	}

	r.GET("/categories", h.Professionals.Categories)
	r.GET("/professionals", h.Professionals.Search)
	r.GET("/professionals/:id", middleware.UUIDValidator("id"), h.Professionals.Get)

	gigs := r.Group("/gigs")
	{
		gigs.GET("/me", requireSession, professionalOnly, h.Gigs.ListMine)
		gigs.GET("/by/:professionalId", middleware.UUIDValidator("professionalId"), h.Gigs.ListByProfessional)
		gigs.GET("/:id", middleware.UUIDValidator("id"), h.Gigs.Get)

		owned := gigs.Group("")
		owned.Use(requireSession, professionalOnly)
		owned.POST("", h.Gigs.Create)
		owned.PUT("/:id", middleware.UUIDValidator("id"), h.Gigs.Update)
		owned.PUT("/:id/image", middleware.UUIDValidator("id"), h.Gigs.UpdateImage)
		owned.DELETE("/:id", middleware.UUIDValidator("id"), h.Gigs.Delete)
	}

	r.GET("/gig-comments/:gigId", middleware.UUIDValidator("gigId"), h.Comments.List)
	r.POST("/gig-comments", requireSession, h.Comments.Create)

	bookings := r.Group("/bookings")
	bookings.Use(requireSession)
	{
		bookings.POST("", clientOnly, h.Bookings.Create)
		bookings.POST("/attachment", clientOnly, h.Bookings.CreateWithAttachment)
		bookings.GET("/client", clientOnly, h.Bookings.ListForClient)
		bookings.GET("/professional", professionalOnly, h.Bookings.ListForProfessional)
		bookings.POST("/:id/status", middleware.UUIDValidator("id"), professionalOnly, h.Bookings.UpdateStatus)
	}

	notifications := r.Group("/notifications")
	notifications.Use(requireSession)
	{
		notifications.GET("", h.Notifications.ListNotifications)
		notifications.GET("/unread/count", h.Notifications.CountUnread)
		notifications.PUT("/read-all", h.Notifications.MarkAllAsRead)
		notifications.PUT("/:id/read", middleware.UUIDValidator("id"), h.Notifications.MarkAsRead)
	}

	r.GET("/ws", requireSession, h.WS.Handle)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminMiddleware(deps.AdminPolicy))
	{
		admin.POST("/approve/:userId", middleware.UUIDValidator("userId"), h.Admin.Approve)
		admin.POST("/reject/:userId", middleware.UUIDValidator("userId"), h.Admin.Reject)
		admin.DELETE("/users/:userId", middleware.UUIDValidator("userId"), h.Admin.DeleteUser)
		admin.GET("/users", h.Admin.ListUsers)
		admin.GET("/pending-professionals", h.Admin.ListPendingProfessionals)
		admin.GET("/stats", h.Admin.Stats)
	}

	return r
}
