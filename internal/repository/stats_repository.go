package repository

import (
	"context"
	"time"

	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/models"
	"gorm.io/gorm"
)

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Label    string  `json:"label"`
	Count    int64   `json:"count"`
	AvgPrice float64 `json:"avg_price,omitempty"`
}

type PriceStats struct {
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

type SellerActivity struct {
	UserID          uint64  `json:"user_id"`
	Username        string  `json:"username"`
	ListingCount    int64   `json:"listing_count"`
	AvgListingPrice float64 `json:"avg_listing_price"`
}

type RecentListing struct {
	ID         uint64    `json:"listing_id"`
	Make       string    `json:"make"`
	Model      string    `json:"model"`
	Year       int       `json:"year"`
	Price      float64   `json:"price"`
	CreatedAt  time.Time `json:"created_at"`
	SellerName string    `json:"seller_name"`
}

// StatsRepository runs the aggregate queries behind the statistics endpoints.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) listings(ctx context.Context, status models.ListingStatus) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Listing{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	return q
}

// CountListings counts listings, optionally restricted to one status.
func (r *StatsRepository) CountListings(ctx context.Context, status models.ListingStatus) (int64, error) {
	var n int64
	if err := r.listings(ctx, status).Count(&n).Error; err != nil {
		return 0, database.TranslateError(err)
	}
	return n, nil
}

func (r *StatsRepository) CountByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.groupCount(ctx, "", "status", 0, false)
}

func (r *StatsRepository) TopMakes(ctx context.Context, limit int) ([]GroupCount, error) {
	return r.groupCount(ctx, "", "make", limit, false)
}

// TopBodyTypes ranks body types among listings with the given status, with their average price.
func (r *StatsRepository) TopBodyTypes(ctx context.Context, status models.ListingStatus, limit int) ([]GroupCount, error) {
	return r.groupCount(ctx, status, "body_type", limit, true)
}

// CountByYear returns the most recent model years first.
func (r *StatsRepository) CountByYear(ctx context.Context, limit int) ([]GroupCount, error) {
	rows := make([]GroupCount, 0)
	err := r.listings(ctx, "").
		Select("CAST(year AS VARCHAR(4)) AS label, COUNT(*) AS count").
		Group("year").
		Order("year DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return rows, nil
}

func (r *StatsRepository) groupCount(ctx context.Context, status models.ListingStatus, column string, limit int, withPrice bool) ([]GroupCount, error) {
	sel := column + " AS label, COUNT(*) AS count"
	if withPrice {
		sel += ", COALESCE(AVG(price), 0) AS avg_price"
	}

	q := r.listings(ctx, status).
		Select(sel).
		Group(column).
		Order("count DESC").
		Order(column + " ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	rows := make([]GroupCount, 0)
	if err := q.Scan(&rows).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return rows, nil
}

// Prices returns average, minimum and maximum price; all zero when nothing matches.
func (r *StatsRepository) Prices(ctx context.Context, status models.ListingStatus) (PriceStats, error) {
	var stats PriceStats
	err := r.listings(ctx, status).
		Select("COALESCE(AVG(price), 0) AS average, COALESCE(MIN(price), 0) AS minimum, COALESCE(MAX(price), 0) AS maximum").
		Scan(&stats).Error
	if err != nil {
		return PriceStats{}, database.TranslateError(err)
	}
	return stats, nil
}

// TopSellers ranks users by how many listings they have.
func (r *StatsRepository) TopSellers(ctx context.Context, limit int) ([]SellerActivity, error) {
	rows := make([]SellerActivity, 0)
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id AS user_id, users.username, COUNT(listings.id) AS listing_count, COALESCE(AVG(listings.price), 0) AS avg_listing_price").
		Joins("JOIN listings ON listings.seller_id = users.id").
		Group("users.id, users.username").
		Order("listing_count DESC").
		Order("users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return rows, nil
}

func (r *StatsRepository) RecentListings(ctx context.Context, limit int) ([]RecentListing, error) {
	rows := make([]RecentListing, 0)
	err := r.db.WithContext(ctx).
		Table("listings").
		Select("listings.id, listings.make, listings.model, listings.year, listings.price, listings.created_at, users.username AS seller_name").
		Joins("JOIN users ON users.id = listings.seller_id").
		Order("listings.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return rows, nil
}

type DailyCount struct {
	Day   string `json:"date"`
	Count int64  `json:"message_count"`
}

// MessageActivity counts messages per day since the given time, latest day first.
func (r *StatsRepository) MessageActivity(ctx context.Context, since time.Time, limit int) ([]DailyCount, error) {
	rows := make([]DailyCount, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Select("CAST(DATE(sent_at) AS VARCHAR(10)) AS day, COUNT(*) AS count").
		Where("sent_at >= ?", since).
		Group("DATE(sent_at)").
		Order("day DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return rows, nil
}
