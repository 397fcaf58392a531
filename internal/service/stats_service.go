package service

import (
	"context"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
)

type ListingStats struct {
	Total      int64                   `json:"total"`
	ByStatus   map[string]int64        `json:"by_status"`
	TopMakes   []repository.GroupCount `json:"top_makes"`
	PriceRange repository.PriceStats   `json:"price_range"`
	ByYear     []repository.GroupCount `json:"by_year"`
}

type StatusCounts struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Sold      int64 `json:"sold"`
	Pending   int64 `json:"pending"`
}

type MarketplaceSummary struct {
	Listings         StatusCounts            `json:"listings"`
	Pricing          repository.PriceStats   `json:"pricing"`
	PopularBodyTypes []repository.GroupCount `json:"popular_body_types"`
}

type UserActivity struct {
	RecentListings  []repository.RecentListing  `json:"recent_listings"`
	TopSellers      []repository.SellerActivity `json:"top_sellers"`
	MessageActivity []repository.DailyCount     `json:"message_activity"`
}

// StatsService assembles the read-only marketplace statistics.
type StatsService struct {
	statsRepo *repository.StatsRepository
}

func NewStatsService(statsRepo *repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

func (s *StatsService) ListingStats(ctx context.Context) (*ListingStats, error) {
	total, err := s.statsRepo.CountListings(ctx, "")
	if err != nil {
		return nil, s.fail("listing stats", err)
	}
	byStatus, err := s.statsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, s.fail("listing stats", err)
	}
	topMakes, err := s.statsRepo.TopMakes(ctx, 10)
	if err != nil {
		return nil, s.fail("listing stats", err)
	}
	prices, err := s.statsRepo.Prices(ctx, "")
	if err != nil {
		return nil, s.fail("listing stats", err)
	}
	byYear, err := s.statsRepo.CountByYear(ctx, 10)
	if err != nil {
		return nil, s.fail("listing stats", err)
	}

	statusMap := make(map[string]int64, len(byStatus))
	for _, row := range byStatus {
		statusMap[row.Label] = row.Count
	}

	return &ListingStats{
		Total:      total,
		ByStatus:   statusMap,
		TopMakes:   topMakes,
		PriceRange: prices,
		ByYear:     byYear,
	}, nil
}

// MarketplaceSummary reports status counts plus pricing and body types of available listings.
func (s *StatsService) MarketplaceSummary(ctx context.Context) (*MarketplaceSummary, error) {
	byStatus, err := s.statsRepo.CountByStatus(ctx)
	if err != nil {
		return nil, s.fail("marketplace summary", err)
	}
	prices, err := s.statsRepo.Prices(ctx, models.ListingAvailable)
	if err != nil {
		return nil, s.fail("marketplace summary", err)
	}
	bodyTypes, err := s.statsRepo.TopBodyTypes(ctx, models.ListingAvailable, 5)
	if err != nil {
		return nil, s.fail("marketplace summary", err)
	}

	var counts StatusCounts
	for _, row := range byStatus {
		counts.Total += row.Count
		switch models.ListingStatus(row.Label) {
		case models.ListingAvailable:
			counts.Available = row.Count
		case models.ListingSold:
			counts.Sold = row.Count
		case models.ListingPending:
			counts.Pending = row.Count
		}
	}

	return &MarketplaceSummary{
		Listings:         counts,
		Pricing:          prices,
		PopularBodyTypes: bodyTypes,
	}, nil
}

// ListingsByMake counts listings per make, most common first.
func (s *StatsService) ListingsByMake(ctx context.Context) ([]repository.GroupCount, error) {
	rows, err := s.statsRepo.TopMakes(ctx, 0)
	if err != nil {
		return nil, s.fail("listings by make", err)
	}
	return rows, nil
}

// UserActivity reports recent listings, top sellers and daily message counts for the last 30 days.
func (s *StatsService) UserActivity(ctx context.Context, limit int) (*UserActivity, error) {
	if limit <= 0 {
		limit = 20
	}

	recent, err := s.statsRepo.RecentListings(ctx, limit)
	if err != nil {
		return nil, s.fail("user activity", err)
	}
	sellers, err := s.statsRepo.TopSellers(ctx, 10)
	if err != nil {
		return nil, s.fail("user activity", err)
	}
	daily, err := s.statsRepo.MessageActivity(ctx, time.Now().UTC().AddDate(0, 0, -30), 30)
	if err != nil {
		return nil, s.fail("user activity", err)
	}

	return &UserActivity{
		RecentListings:  recent,
		TopSellers:      sellers,
		MessageActivity: daily,
	}, nil
}

func (s *StatsService) fail(what string, err error) error {
	logger.Log.Error("Failed to compute statistics",
		zap.String("report", what),
		zap.Error(err),
	)
	return err
}
