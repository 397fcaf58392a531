package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Baaaki/car-marketplace/internal/audit"
	"github.com/Baaaki/car-marketplace/internal/broker"
	"github.com/Baaaki/car-marketplace/internal/config"
	"github.com/Baaaki/car-marketplace/internal/credential"
	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/handler"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/internal/storage"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Invalid REDIS_URL", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	journal, err := audit.Open(cfg.AuditPath)
	if err != nil {
		logger.Log.Fatal("Failed to open audit journal", zap.Error(err))
	}
	defer journal.Close()

	notifier, err := broker.NewRedisNotifier(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to initialize Redis notifier", zap.Error(err))
	}
	defer notifier.Close()

	images, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, cfg.UploadMaxBytes)
	if err != nil {
		logger.Log.Fatal("Failed to initialize image storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessions, credential.NewHasher(credential.DefaultParams))
	listingService := service.NewListingService(listingRepo, journal)
	messageService := service.NewMessageService(messageRepo, userRepo, listingRepo, notifier)
	statsService := service.NewStatsService(statsRepo)

	router := handler.NewRouter(handler.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Sessions:       sessions,
		AuthService:    authService,
		ListingService: listingService,
		MessageService: messageService,
		StatsService:   statsService,
		Notifier:       notifier,
		Audit:          journal,
		Images:         images,
		AuthLimiter: middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			Prefix:      "auth",
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
		}),
		Cookie: handler.CookieConfig{
			Name:   cfg.SessionCookie,
			TTL:    cfg.SessionTTL,
			Secure: cfg.IsProduction(),
		},
		CORSOrigin:     cfg.CORSOrigin,
		UploadDir:      cfg.UploadDir,
		UploadMaxBytes: cfg.UploadMaxBytes,
		IsProduction:   cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
