package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/query"
	"gorm.io/gorm"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// List returns every listing matching filter. No match yields an empty slice.
func (r *ListingRepository) List(ctx context.Context, filter query.ListingFilter) ([]models.Listing, error) {
	listings := make([]models.Listing, 0)
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope).
		Find(&listings).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return listings, nil
}

// GetByID returns (nil, nil) when the listing does not exist.
func (r *ListingRepository) GetByID(ctx context.Context, id uint64) (*models.Listing, error) {
	return r.get(ctx, r.db, id)
}

// GetWithSeller is GetByID with the seller's public fields loaded.
func (r *ListingRepository) GetWithSeller(ctx context.Context, id uint64) (*models.Listing, error) {
	return r.get(ctx, r.db.Preload("Seller"), id)
}

func (r *ListingRepository) get(ctx context.Context, db *gorm.DB, id uint64) (*models.Listing, error) {
	if !storable(id) {
		return nil, nil
	}
	var listing models.Listing
	err := db.WithContext(ctx).Where("id = ?", id).First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.TranslateError(err)
	}
	return &listing, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(listing).Error)
}

// Update replaces every mutable field of the listing. Seller and creation time are kept.
func (r *ListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if !storable(listing.ID) {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Select("make", "model", "year", "price", "mileage", "body_type",
			"vin", "description", "main_photo_url", "status", "updated_at").
		Updates(listing).Error
	return database.TranslateError(err)
}

func (r *ListingRepository) Delete(ctx context.Context, id uint64) error {
	if !storable(id) {
		return nil
	}
	return database.TranslateError(r.db.WithContext(ctx).Delete(&models.Listing{}, id).Error)
}

// All returns every listing ordered by id, for feeds and exports.
func (r *ListingRepository) All(ctx context.Context) ([]models.Listing, error) {
	listings := make([]models.Listing, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&listings).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return listings, nil
}
