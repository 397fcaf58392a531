package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err as a JSON error body with the status for its kind.
func respondError(c *gin.Context, err error) {
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		logger.Log.Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	switch ae.Kind {
	case apperror.KindValidation:
		details := ae.Fields
		if details == nil {
			details = []apperror.FieldError{}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   ae.Message,
			"details": details,
		})
	case apperror.KindAuth, apperror.KindUnauthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{"error": ae.Message})
	case apperror.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": ae.Message})
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": ae.Message})
	case apperror.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": ae.Message})
	case apperror.KindStorage:
		status := storageStatus(ae.Storage)
		logger.Log.Error("Storage failure",
			zap.String("path", c.Request.URL.Path),
			zap.String("storage_kind", string(ae.Storage)),
			zap.Error(err),
		)
		// Driver detail stays in the log.
		c.JSON(status, gin.H{
			"error": "storage failure",
			"code":  ae.Storage,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func storageStatus(kind apperror.StorageKind) int {
	switch kind {
	case apperror.StorageUnavailable, apperror.StorageAccessDenied, apperror.StorageMissingDatabase:
		return http.StatusServiceUnavailable
	case apperror.StorageDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the request body into dst. A malformed body is answered
// with 400 and false is returned.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Log.Warn("Request body parsing failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondError(c, apperror.Validation(apperror.FieldError{
			Field:   "body",
			Message: "invalid request body",
		}))
		return false
	}
	return true
}

// pathID parses the named path parameter as a positive id.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperror.Validation(apperror.FieldError{
			Field:   name,
			Message: name + " must be a positive integer",
		}))
		return 0, false
	}
	return id, true
}
