package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/eustad-backend/internal/config"
	"github.com/ignatzorin/eustad-backend/internal/db"
	"github.com/ignatzorin/eustad-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/eustad-backend/internal/http/handlers"
	"github.com/ignatzorin/eustad-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/eustad-backend/internal/http/router"
	"github.com/ignatzorin/eustad-backend/internal/logger"
	"github.com/ignatzorin/eustad-backend/internal/repository"
	"github.com/ignatzorin/eustad-backend/internal/service"
	"github.com/ignatzorin/eustad-backend/internal/storage"
	"github.com/ignatzorin/eustad-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	sentryEnabled := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Env,
		}); err != nil {
			logger.Log.Warnf("main: sentry не инициализирован: %v", err)
		} else {
			sentryEnabled = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}

	rdb, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.Fatalf("main: %v", err)
	}
	if rdb != nil {
		defer safeCloseRedis(rdb)
	}

	images, err := storage.NewImageStorage(cfg.UploadsPath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	gigRepo := repository.NewGigRepository(dbConn)
	commentRepo := repository.NewCommentRepository(dbConn)
	bookingRepo := repository.NewBookingRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	adminRepo := repository.NewAdminRepository(dbConn)

	// Вебсокеты.
	notificationService := service.NewNotificationService(notificationRepo)
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(notificationService)
	if rdb != nil {
		relay := ws.NewRedisRelay(rdb, hub)
		hub.SetPublisher(relay)
		goroutine.SafeGoWithContext(ctx, "ws-redis-relay", relay.Run)
	}
	go hub.Run()

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	cache := service.NewCacheService(ctx)
	authService := service.NewAuthService(userRepo, tokenManager, images)
	professionalService := service.NewProfessionalService(userRepo, gigRepo)
	gigService := service.NewGigService(gigRepo, images)
	commentService := service.NewCommentService(commentRepo, gigService)
	bookingService := service.NewBookingService(bookingRepo, userRepo, images, hub)
	adminService := service.NewAdminService(userRepo, adminRepo, images, cache, cfg.StatsCacheTTL)

	rateStore, err := middleware.NewRateLimitStore(rdb)
	if err != nil {
		logger.Log.Fatalf("main: не удалось создать хранилище rate limit: %v", err)
	}

	healthChecks := map[string]httpHandlers.HealthCheck{
		"database": httpHandlers.DatabaseCheck(dbConn),
	}
	if rdb != nil {
		healthChecks["redis"] = httpHandlers.RedisCheck(rdb)
	}

	// HTTP хэндлеры.
	handlers := httpRouter.Handlers{
		Auth: httpHandlers.NewAuthHandler(authService, httpHandlers.SessionCookie{
			Name:   cfg.SessionCookieName,
			TTL:    authService.SessionTTL(),
			Secure: cfg.CookieSecure,
		}),
		Professionals: httpHandlers.NewProfessionalHandler(professionalService),
		Gigs:          httpHandlers.NewGigHandler(gigService),
		Comments:      httpHandlers.NewCommentHandler(commentService),
		Bookings:      httpHandlers.NewBookingHandler(bookingService),
		Admin:         httpHandlers.NewAdminHandler(adminService),
		Notifications: httpHandlers.NewNotificationHandler(notificationService),
		WS:            httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins),
		Health:        httpHandlers.NewHealthHandler(healthChecks),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, httpRouter.Dependencies{
		Sessions:       authService,
		AdminPolicy:    middleware.NewAdminPolicy(cfg.AdminEmail, cfg.AdminPassword),
		RateLimitStore: rateStore,
		SentryEnabled:  sentryEnabled,
	}, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Errorf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	logger.Log.Infof("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия базы: %v", err)
	}
}

func safeCloseRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logger.Log.Errorf("main: ошибка закрытия redis: %v", err)
	}
}
