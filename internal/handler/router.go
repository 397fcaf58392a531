package handler

import (
	"time"

	"github.com/Baaaki/car-marketplace/internal/broker"
	"github.com/Baaaki/car-marketplace/internal/metrics"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RouterConfig carries everything the HTTP layer depends on.
type RouterConfig struct {
	DB    *gorm.DB
	Redis *redis.Client

	Sessions       session.Store
	AuthService    *service.AuthService
	ListingService *service.ListingService
	MessageService *service.MessageService
	StatsService   *service.StatsService
	Notifier       broker.Notifier
	Audit          AuditReader
	Images         storage.ImageStore

	// AuthLimiter guards /api/auth and owns the banned-IP set.
	AuthLimiter *middleware.RateLimiter

	Cookie         CookieConfig
	CORSOrigin     string
	UploadDir      string
	UploadMaxBytes int64
	IsProduction   bool
}

// NewRouter builds the gin engine with every route and middleware installed.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SessionLoader(cfg.Sessions, cfg.Cookie.Name))

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Cookie)
	listingHandler := NewListingHandler(cfg.ListingService)
	messageHandler := NewMessageHandler(cfg.MessageService)
	wsHandler := NewWebSocketHandler(cfg.Notifier, cfg.CORSOrigin)
	exportHandler := NewExportHandler(cfg.ListingService, cfg.MessageService)
	statsHandler := NewStatsHandler(cfg.StatsService)
	uploadHandler := NewUploadHandler(cfg.Images, cfg.UploadMaxBytes)
	adminHandler := NewAdminHandler(cfg.AuthService, cfg.Audit, cfg.AuthLimiter)
	healthHandler := NewHealthHandler(cfg.DB, cfg.Redis)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.UploadDir != "" {
		router.Static("/uploads", cfg.UploadDir)
	}

	api := router.Group("/api")

	api.GET("/health", healthHandler.Live)
	api.GET("/health/ready", healthHandler.Ready)

	auth := api.Group("/auth")
	auth.Use(cfg.AuthLimiter.Middleware(), middleware.NoStore())
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}

	listings := api.Group("/listings")
	{
		listings.GET("", listingHandler.List)
		listings.GET("/xml/all", listingHandler.XMLFeed)
		listings.GET("/:id", listingHandler.Get)
		listings.POST("", middleware.RequireLogin(), listingHandler.Create)
		listings.PUT("/:id", middleware.RequireLogin(), listingHandler.Update)
		listings.DELETE("/:id", middleware.RequireLogin(), listingHandler.Delete)
	}

	messages := api.Group("/messages")
	messages.Use(middleware.RequireLogin(), middleware.NoStore())
	{
		messages.POST("", messageHandler.Send)
		messages.GET("/inbox", messageHandler.Inbox)
		messages.GET("/sent", messageHandler.Sent)
		messages.GET("/thread/:otherUserId", messageHandler.Thread)
		messages.GET("/ws", wsHandler.HandleWebSocket)
		messages.PUT("/:id", messageHandler.Update)
		messages.DELETE("/:id", messageHandler.Delete)
	}

	exports := api.Group("/export")
	exports.Use(middleware.RequireLogin())
	{
		exports.GET("/listings/csv", exportHandler.ListingsCSV)
		exports.GET("/messages/csv", exportHandler.MessagesCSV)
	}

	webservices := api.Group("/webservices")
	{
		webservices.GET("/listings/stats", statsHandler.ListingStats)
		webservices.GET("/marketplace/summary", statsHandler.MarketplaceSummary)
		webservices.GET("/users/activity", statsHandler.UserActivity)
	}
	api.GET("/stats/listings-by-make", statsHandler.ListingsByMake)
	api.GET("/stats/listings-by-brand", statsHandler.ListingsByMake)

	api.POST("/upload/image", middleware.RequireLogin(), uploadHandler.UploadImage)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleAdmin), middleware.NoStore())
	{
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.GET("/audit", adminHandler.AuditLog)
		admin.GET("/banned-ips", adminHandler.BannedIPs)
		admin.POST("/banned-ips", adminHandler.BanIP)
		admin.DELETE("/banned-ips/:ip", adminHandler.UnbanIP)
	}

	return router
}
