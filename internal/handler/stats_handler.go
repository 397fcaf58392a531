package handler

import (
	"net/http"
	"strconv"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/gin-gonic/gin"
)

const maxActivityLimit = 100

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GET /api/webservices/listings/stats
func (h *StatsHandler) ListingStats(c *gin.Context) {
	stats, err := h.statsService.ListingStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GET /api/webservices/marketplace/summary
func (h *StatsHandler) MarketplaceSummary(c *gin.Context) {
	summary, err := h.statsService.MarketplaceSummary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// UserActivity accepts an optional limit in [1, 100].
// GET /api/webservices/users/activity
func (h *StatsHandler) UserActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			respondError(c, apperror.Validation(apperror.FieldError{
				Field:   "limit",
				Message: "limit must be an integer between 1 and 100",
			}))
			return
		}
		limit = n
	}

	activity, err := h.statsService.UserActivity(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// GET /api/stats/listings-by-make
func (h *StatsHandler) ListingsByMake(c *gin.Context) {
	rows, err := h.statsService.ListingsByMake(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
