package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/Baaaki/car-marketplace/internal/export"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ExportHandler struct {
	listingService *service.ListingService
	messageService *service.MessageService
}

func NewExportHandler(listingService *service.ListingService, messageService *service.MessageService) *ExportHandler {
	return &ExportHandler{
		listingService: listingService,
		messageService: messageService,
	}
}

// ListingsCSV downloads every listing as CSV.
// GET /api/export/listings/csv
func (h *ExportHandler) ListingsCSV(c *gin.Context) {
	listings, err := h.listingService.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.ListingsCSV(&buf, listings); err != nil {
		logger.Log.Error("Failed to render listings CSV", zap.Error(err))
		respondError(c, err)
		return
	}
	sendCSV(c, "listings", buf.Bytes())
}

// MessagesCSV downloads the caller's sent and received messages as CSV.
// GET /api/export/messages/csv
func (h *ExportHandler) MessagesCSV(c *gin.Context) {
	messages, err := h.messageService.Involving(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.MessagesCSV(&buf, messages); err != nil {
		logger.Log.Error("Failed to render messages CSV", zap.Error(err))
		respondError(c, err)
		return
	}
	sendCSV(c, "messages", buf.Bytes())
}

func sendCSV(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
