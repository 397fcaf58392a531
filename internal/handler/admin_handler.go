package handler

import (
	"net"
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/audit"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditReader exposes the listing audit journal.
type AuditReader interface {
	ReadAll() ([]audit.Entry, error)
}

type AdminHandler struct {
	authService *service.AuthService
	audit       AuditReader
	limiter     *middleware.RateLimiter
}

func NewAdminHandler(authService *service.AuthService, audit AuditReader, limiter *middleware.RateLimiter) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		audit:       audit,
		limiter:     limiter,
	}
}

type BanIPRequest struct {
	IP string `json:"ip"`
}

// GetAllUsers returns all users
// GET /api/admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// AuditLog returns every recorded listing mutation, oldest first.
// GET /api/admin/audit
func (h *AdminHandler) AuditLog(c *gin.Context) {
	entries, err := h.audit.ReadAll()
	if err != nil {
		logger.Log.Error("Failed to read audit journal", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// BannedIPs lists addresses refused by the rate limiter.
// GET /api/admin/banned-ips
func (h *AdminHandler) BannedIPs(c *gin.Context) {
	ips, err := h.limiter.BannedIPs(c.Request.Context())
	if err != nil {
		logger.Log.Error("Failed to list banned IPs", zap.Error(err))
		respondError(c, apperror.Storage(apperror.StorageUnavailable, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ips": ips})
}

// BanIP adds an address to the banned set.
// POST /api/admin/banned-ips
func (h *AdminHandler) BanIP(c *gin.Context) {
	var req BanIPRequest
	if !bindJSON(c, &req) {
		return
	}
	if net.ParseIP(req.IP) == nil {
		respondError(c, apperror.Validation(apperror.FieldError{
			Field:   "ip",
			Message: "ip must be a valid IP address",
		}))
		return
	}

	if err := h.limiter.BanIP(c.Request.Context(), req.IP); err != nil {
		logger.Log.Error("Failed to ban IP", zap.String("ip", req.IP), zap.Error(err))
		respondError(c, apperror.Storage(apperror.StorageUnavailable, err))
		return
	}

	logger.Log.Info("Admin banned IP",
		zap.Uint64("admin_id", middleware.CurrentSession(c).User.ID),
		zap.String("ip", req.IP),
	)
	c.JSON(http.StatusOK, gin.H{"message": "IP banned successfully"})
}

// UnbanIP removes an address from the banned set.
// DELETE /api/admin/banned-ips/:ip
func (h *AdminHandler) UnbanIP(c *gin.Context) {
	ip := c.Param("ip")
	if err := h.limiter.UnbanIP(c.Request.Context(), ip); err != nil {
		logger.Log.Error("Failed to unban IP", zap.String("ip", ip), zap.Error(err))
		respondError(c, apperror.Storage(apperror.StorageUnavailable, err))
		return
	}

	logger.Log.Info("Admin unbanned IP",
		zap.Uint64("admin_id", middleware.CurrentSession(c).User.ID),
		zap.String("ip", ip),
	)
	c.JSON(http.StatusOK, gin.H{"message": "IP unbanned successfully"})
}
