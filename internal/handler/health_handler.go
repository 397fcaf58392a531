package handler

import (
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redisClient,
	}
}

// GET /api/health
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the database and Redis are reachable.
// GET /api/health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{"database": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := database.Ping(h.db); err != nil {
		logger.Log.Warn("Readiness: database unreachable", zap.Error(err))
		checks["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		logger.Log.Warn("Readiness: redis unreachable", zap.Error(err))
		checks["redis"] = "unavailable"
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
