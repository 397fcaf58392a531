package handler

import (
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/storage"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 64 * 1024

type UploadHandler struct {
	store    storage.ImageStore
	maxBytes int64
}

func NewUploadHandler(store storage.ImageStore, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		store:    store,
		maxBytes: maxBytes,
	}
}

// UploadImage stores the multipart field "image" and returns its public URL.
// POST /api/upload/image
func (h *UploadHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, apperror.Validation(apperror.FieldError{
			Field:   "image",
			Message: "image file is required and must not exceed the size limit",
		}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Error("Failed to open uploaded file", zap.Error(err))
		respondError(c, err)
		return
	}
	defer file.Close()

	image, err := h.store.Save(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Log.Info("Image uploaded",
		zap.Uint64("user_id", middleware.CurrentSession(c).User.ID),
		zap.String("filename", image.Filename),
		zap.Int64("size", image.Size),
	)

	c.JSON(http.StatusCreated, image)
}
