package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/audit"
	"github.com/Baaaki/car-marketplace/internal/metrics"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/policy"
	"github.com/Baaaki/car-marketplace/internal/query"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
)

// ListingInput carries every mutable listing field. Update replaces all of them,
// so omitted optional fields are cleared.
type ListingInput struct {
	Make         string               `json:"make" validate:"required,max=50"`
	Model        string               `json:"model" validate:"required,max=50"`
	Year         *int                 `json:"year" validate:"required,min=1950,notfuture"`
	Price        *float64             `json:"price" validate:"required,gte=0.01,lte=9999999999.99,cents"`
	Mileage      *int                 `json:"mileage" validate:"required,min=0"`
	BodyType     string               `json:"body_type" validate:"required,max=50"`
	VIN          string               `json:"vin" validate:"max=17"`
	Description  string               `json:"description"`
	MainPhotoURL string               `json:"main_photo_url" validate:"omitempty,url"`
	Status       models.ListingStatus `json:"status" validate:"omitempty,oneof=available sold pending"`
}

func (in *ListingInput) normalize() {
	in.Make = strings.TrimSpace(in.Make)
	in.Model = strings.TrimSpace(in.Model)
	in.BodyType = strings.TrimSpace(in.BodyType)
	in.VIN = strings.TrimSpace(in.VIN)
	in.MainPhotoURL = strings.TrimSpace(in.MainPhotoURL)
	if in.Status == "" {
		in.Status = models.ListingAvailable
	}
}

// apply copies validated fields onto l.
func (in *ListingInput) apply(l *models.Listing) {
	l.Make = in.Make
	l.Model = in.Model
	l.Year = *in.Year
	l.Price = *in.Price
	l.Mileage = *in.Mileage
	l.BodyType = in.BodyType
	l.VIN = in.VIN
	l.Description = in.Description
	l.MainPhotoURL = in.MainPhotoURL
	l.Status = in.Status
}

// AuditRecorder receives one entry per listing mutation.
type AuditRecorder interface {
	Append(entry audit.Entry) error
}

type ListingService struct {
	listingRepo *repository.ListingRepository
	audit       AuditRecorder
}

func NewListingService(listingRepo *repository.ListingRepository, audit AuditRecorder) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		audit:       audit,
	}
}

// List parses query-string filters and returns matching listings.
func (s *ListingService) List(ctx context.Context, values url.Values) ([]models.Listing, error) {
	filter, err := query.ParseListingFilter(values)
	if err != nil {
		logger.Log.Debug("Rejected listing filter", zap.Error(err))
		return nil, err
	}

	listings, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		logger.Log.Error("Failed to list listings", zap.Error(err))
		return nil, err
	}
	return listings, nil
}

// Get returns the listing with its seller loaded.
func (s *ListingService) Get(ctx context.Context, id uint64) (*models.Listing, error) {
	listing, err := s.listingRepo.GetWithSeller(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to get listing",
			zap.Uint64("listing_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if listing == nil {
		return nil, apperror.NotFound("listing not found")
	}
	return listing, nil
}

// All returns every listing in id order.
func (s *ListingService) All(ctx context.Context) ([]models.Listing, error) {
	return s.listingRepo.All(ctx)
}

// Create stores a new listing owned by the session's user.
func (s *ListingService) Create(ctx context.Context, sess *session.Session, in ListingInput) (*models.Listing, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}

	in.normalize()
	if err := validateStruct(in); err != nil {
		logger.Log.Warn("Listing validation failed",
			zap.Uint64("user_id", sess.User.ID),
			zap.Error(err),
		)
		return nil, err
	}

	listing := &models.Listing{SellerID: sess.User.ID}
	in.apply(listing)

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		logger.Log.Error("Failed to create listing",
			zap.Uint64("user_id", sess.User.ID),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(audit.ActionCreate, listing.ID, sess.User.ID)

	logger.Log.Info("Listing created",
		zap.Uint64("listing_id", listing.ID),
		zap.Uint64("seller_id", listing.SellerID),
	)

	return listing, nil
}

// Update replaces every mutable field. Only the seller or an admin may update,
// and a missing listing is reported before ownership.
func (s *ListingService) Update(ctx context.Context, sess *session.Session, id uint64, in ListingInput) (*models.Listing, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}

	in.normalize()
	if err := validateStruct(in); err != nil {
		logger.Log.Warn("Listing validation failed",
			zap.Uint64("listing_id", id),
			zap.Uint64("user_id", sess.User.ID),
			zap.Error(err),
		)
		return nil, err
	}

	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.RequireOwnerOrAdmin(sess, listing.SellerID); err != nil {
		logger.Log.Warn("Listing update forbidden",
			zap.Uint64("listing_id", id),
			zap.Uint64("user_id", sess.User.ID),
		)
		return nil, err
	}

	in.apply(listing)
	listing.UpdatedAt = time.Now()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		logger.Log.Error("Failed to update listing",
			zap.Uint64("listing_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(audit.ActionUpdate, id, sess.User.ID)

	logger.Log.Info("Listing updated",
		zap.Uint64("listing_id", id),
		zap.Uint64("user_id", sess.User.ID),
	)

	return listing, nil
}

// Delete removes a listing permanently. Messages referring to it keep their listing_id.
func (s *ListingService) Delete(ctx context.Context, sess *session.Session, id uint64) error {
	if err := policy.RequireLogin(sess); err != nil {
		return err
	}

	listing, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.RequireOwnerOrAdmin(sess, listing.SellerID); err != nil {
		logger.Log.Warn("Listing delete forbidden",
			zap.Uint64("listing_id", id),
			zap.Uint64("user_id", sess.User.ID),
		)
		return err
	}

	if err := s.listingRepo.Delete(ctx, id); err != nil {
		logger.Log.Error("Failed to delete listing",
			zap.Uint64("listing_id", id),
			zap.Error(err),
		)
		return err
	}

	s.record(audit.ActionDelete, id, sess.User.ID)

	logger.Log.Info("Listing deleted",
		zap.Uint64("listing_id", id),
		zap.Uint64("user_id", sess.User.ID),
	)

	return nil
}

func (s *ListingService) load(ctx context.Context, id uint64) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to load listing",
			zap.Uint64("listing_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if listing == nil {
		return nil, apperror.NotFound("listing not found")
	}
	return listing, nil
}

// record counts the mutation and journals it. The row is already committed,
// so a journal failure is logged rather than returned.
func (s *ListingService) record(action audit.Action, listingID, actorID uint64) {
	metrics.ListingMutationsTotal.WithLabelValues(string(action)).Inc()

	if s.audit == nil {
		return
	}
	err := s.audit.Append(audit.Entry{
		Action:    action,
		ListingID: listingID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.Log.Error("Failed to journal listing mutation",
			zap.String("action", string(action)),
			zap.Uint64("listing_id", listingID),
			zap.Error(err),
		)
	}
}
