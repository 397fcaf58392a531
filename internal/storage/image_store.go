// Package storage saves uploaded listing photos and returns their public URLs.
package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedTypes maps accepted file extensions to the content type the bytes must sniff as.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Image describes a stored upload.
type Image struct {
	Filename string `json:"filename"`
	URL      string `json:"imageUrl"`
	Size     int64  `json:"size"`
}

// ImageStore persists an uploaded image and returns where it can be fetched.
type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (*Image, error)
}

// LocalStore writes images under dir and serves them from baseURL + "/uploads/".
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

func NewLocalStore(dir, baseURL string, maxBytes int64) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &LocalStore{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (*Image, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	wantType, ok := allowedTypes[ext]
	if !ok {
		return nil, invalidImage("only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxBytes {
		return nil, invalidImage("file is too large")
	}
	if len(data) == 0 {
		return nil, invalidImage("file is empty")
	}

	if detected := mimetype.Detect(data); !detected.Is(wantType) {
		logger.Log.Warn("Upload content does not match extension",
			zap.String("extension", ext),
			zap.String("detected", detected.String()),
		)
		return nil, invalidImage("file content is not a " + ext[1:] + " image")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		logger.Log.Error("Failed to write upload",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Image uploaded",
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)

	return &Image{
		Filename: filename,
		URL:      s.baseURL + "/uploads/" + filename,
		Size:     int64(len(data)),
	}, nil
}

func invalidImage(msg string) error {
	return apperror.Validation(apperror.FieldError{Field: "image", Message: msg})
}

