package handler

import (
	"bytes"
	"net/http"

	"github.com/Baaaki/car-marketplace/internal/export"
	"github.com/Baaaki/car-marketplace/internal/middleware"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

// List returns the listings matching the query-string filters.
// GET /api/listings
func (h *ListingHandler) List(c *gin.Context) {
	listings, err := h.listingService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listings)
}

// Get returns one listing with its seller.
// GET /api/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Create stores a listing owned by the caller.
// POST /api/listings
func (h *ListingHandler) Create(c *gin.Context) {
	var req service.ListingInput
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Listing created successfully",
		"id":      listing.ID,
	})
}

// Update replaces the mutable fields of a listing.
// PUT /api/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.ListingInput
	if !bindJSON(c, &req) {
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), middleware.CurrentSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Listing updated successfully",
		"listing": listing,
	})
}

// Delete removes a listing.
// DELETE /api/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), middleware.CurrentSession(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

// XMLFeed renders every listing as an XML document.
// GET /api/listings/xml/all
func (h *ListingHandler) XMLFeed(c *gin.Context) {
	listings, err := h.listingService.All(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.ListingsXML(&buf, listings); err != nil {
		logger.Log.Error("Failed to render listings XML", zap.Error(err))
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
