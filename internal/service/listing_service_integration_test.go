package service_test

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/audit"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/internal/testutil"
	"github.com/stretchr/testify/suite"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func uint64Ptr(v uint64) *uint64  { return &v }

func civic() service.ListingInput {
	return service.ListingInput{
		Make:     "Honda",
		Model:    "Civic",
		Year:     intPtr(2019),
		Price:    floatPtr(15000),
		Mileage:  intPtr(40000),
		BodyType: "Sedan",
	}
}

type ListingServiceIntegrationTestSuite struct {
	suite.Suite
	testDB         *testutil.TestDatabase
	journal        *audit.Journal
	listingService *service.ListingService
	alice          *session.Session
	bob            *session.Session
	admin          *session.Session
	ctx            context.Context
}

func (s *ListingServiceIntegrationTestSuite) SetupSuite() {
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.ctx = context.Background()
}

func (s *ListingServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ListingServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)

	journal, err := audit.Open(filepath.Join(s.T().TempDir(), "audit.log"))
	s.Require().NoError(err)
	s.journal = journal
	s.T().Cleanup(func() { journal.Close() })

	s.listingService = service.NewListingService(repository.NewListingRepository(s.testDB.DB), s.journal)

	s.alice = testutil.SessionFor(testutil.CreateTestUser(s.T(), s.testDB.DB, "alice", "alice@example.com", "secret1", models.RoleUser))
	s.bob = testutil.SessionFor(testutil.CreateTestUser(s.T(), s.testDB.DB, "bob", "bob@example.com", "secret2", models.RoleUser))
	s.admin = testutil.SessionFor(testutil.CreateTestUser(s.T(), s.testDB.DB, "admin", "admin@example.com", "Admin123", models.RoleAdmin))
}

func (s *ListingServiceIntegrationTestSuite) fieldsOf(err error) []string {
	var names []string
	for _, f := range apperror.FieldsOf(err) {
		names = append(names, f.Field)
	}
	return names
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_RequiresLogin() {
	_, err := s.listingService.Create(s.ctx, nil, civic())
	s.ErrorIs(err, apperror.ErrUnauthenticated)
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_DefaultsAndOwnership() {
	listing, err := s.listingService.Create(s.ctx, s.alice, civic())

	s.Require().NoError(err)
	s.NotZero(listing.ID)
	s.Equal(s.alice.User.ID, listing.SellerID)
	s.Equal(models.ListingAvailable, listing.Status)
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_YearTooOld() {
	in := civic()
	in.Year = intPtr(1940)

	_, err := s.listingService.Create(s.ctx, s.alice, in)

	s.ErrorIs(err, apperror.ErrValidation)
	s.Equal([]string{"year"}, s.fieldsOf(err))
	s.Contains(err.Error(), "year")
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_YearInFuture() {
	in := civic()
	in.Year = intPtr(time.Now().Year() + 1)

	_, err := s.listingService.Create(s.ctx, s.alice, in)

	s.ErrorIs(err, apperror.ErrValidation)
	s.Equal([]string{"year"}, s.fieldsOf(err))
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_ZeroPrice() {
	in := civic()
	in.Price = floatPtr(0)

	_, err := s.listingService.Create(s.ctx, s.alice, in)

	s.ErrorIs(err, apperror.ErrValidation)
	s.Equal([]string{"price"}, s.fieldsOf(err))
	s.Contains(err.Error(), "price")
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_PriceFitsColumn() {
	tests := []struct {
		name  string
		price float64
		valid bool
	}{
		{"below one cent", 0.001, false},
		{"one cent", 0.01, true},
		{"whole amount", 15000, true},
		{"two decimals", 15000.99, true},
		{"three decimals", 10.555, false},
		{"largest amount", 9999999999.99, true},
		{"overflows column", 1e10, false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := civic()
			in.Price = floatPtr(tt.price)

			listing, err := s.listingService.Create(s.ctx, s.alice, in)
			if !tt.valid {
				s.ErrorIs(err, apperror.ErrValidation)
				s.Equal([]string{"price"}, s.fieldsOf(err))
				return
			}
			s.Require().NoError(err)

			got, err := s.listingService.Get(s.ctx, listing.ID)
			s.Require().NoError(err)
			s.InDelta(tt.price, got.Price, 0.001)
		})
	}
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_ZeroMileageAllowed() {
	in := civic()
	in.Mileage = intPtr(0)

	_, err := s.listingService.Create(s.ctx, s.alice, in)
	s.NoError(err)
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_ReportsEveryViolation() {
	in := service.ListingInput{
		Model:        "this model name is far too long to fit within fifty characters",
		Year:         intPtr(1900),
		Price:        floatPtr(-1),
		Mileage:      intPtr(-5),
		MainPhotoURL: "photos/car.jpg",
		Status:       "scrapped",
	}

	_, err := s.listingService.Create(s.ctx, s.alice, in)

	s.Require().ErrorIs(err, apperror.ErrValidation)
	s.ElementsMatch(
		[]string{"make", "model", "year", "price", "mileage", "body_type", "main_photo_url", "status"},
		s.fieldsOf(err),
	)
}

func (s *ListingServiceIntegrationTestSuite) TestCreate_WritesAuditEntry() {
	listing, err := s.listingService.Create(s.ctx, s.alice, civic())
	s.Require().NoError(err)

	entries, err := s.journal.ReadAll()
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(audit.ActionCreate, entries[0].Action)
	s.Equal(listing.ID, entries[0].ListingID)
	s.Equal(s.alice.User.ID, entries[0].ActorID)
}

func (s *ListingServiceIntegrationTestSuite) TestGet_IncludesSeller() {
	created, err := s.listingService.Create(s.ctx, s.alice, civic())
	s.Require().NoError(err)

	listing, err := s.listingService.Get(s.ctx, created.ID)

	s.Require().NoError(err)
	s.Require().NotNil(listing.Seller)
	s.Equal("alice", listing.Seller.Username)
}

func (s *ListingServiceIntegrationTestSuite) TestGet_Missing() {
	_, err := s.listingService.Get(s.ctx, 424242)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ListingServiceIntegrationTestSuite) TestUpdate_OwnerAndAdminOnly() {
	created, err := s.listingService.Create(s.ctx, s.alice, civic())
	s.Require().NoError(err)

	in := civic()
	in.Price = floatPtr(14000)

	_, err = s.listingService.Update(s.ctx, s.bob, created.ID, in)
	s.ErrorIs(err, apperror.ErrForbidden)

	updated, err := s.listingService.Update(s.ctx, s.alice, created.ID, in)
	s.Require().NoError(err)
	s.Equal(14000.0, updated.Price)

	in.Status = models.ListingSold
	updated, err = s.listingService.Update(s.ctx, s.admin, created.ID, in)
	s.Require().NoError(err)
	s.Equal(models.ListingSold, updated.Status)
	s.Equal(s.alice.User.ID, updated.SellerID)
}

func (s *ListingServiceIntegrationTestSuite) TestUpdate_NotFoundBeforeForbidden() {
	_, err := s.listingService.Update(s.ctx, s.bob, 424242, civic())
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ListingServiceIntegrationTestSuite) TestUpdate_ReplacesOptionalFields() {
	in := civic()
	in.Description = "one owner"
	in.VIN = "1HGBH41JXMN109186"
	created, err := s.listingService.Create(s.ctx, s.alice, in)
	s.Require().NoError(err)

	_, err = s.listingService.Update(s.ctx, s.alice, created.ID, civic())
	s.Require().NoError(err)

	got, err := s.listingService.Get(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Empty(got.Description)
	s.Empty(got.VIN)
}

func (s *ListingServiceIntegrationTestSuite) TestDelete_NotFoundForAnyCaller() {
	for _, sess := range []*session.Session{s.alice, s.bob, s.admin} {
		err := s.listingService.Delete(s.ctx, sess, 424242)
		s.ErrorIs(err, apperror.ErrNotFound)
	}
}

func (s *ListingServiceIntegrationTestSuite) TestIDBeyondKeyRange_NotFound() {
	const id = uint64(1) << 63

	_, err := s.listingService.Get(s.ctx, id)
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = s.listingService.Update(s.ctx, s.alice, id, civic())
	s.ErrorIs(err, apperror.ErrNotFound)

	err = s.listingService.Delete(s.ctx, s.alice, id)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *ListingServiceIntegrationTestSuite) TestDelete_Forbidden() {
	created, err := s.listingService.Create(s.ctx, s.alice, civic())
	s.Require().NoError(err)

	err = s.listingService.Delete(s.ctx, s.bob, created.ID)
	s.ErrorIs(err, apperror.ErrForbidden)

	s.NoError(s.listingService.Delete(s.ctx, s.admin, created.ID))
}

func (s *ListingServiceIntegrationTestSuite) TestAliceScenario() {
	listing, err := s.listingService.Create(s.ctx, s.alice, civic())
	s.Require().NoError(err)

	got, err := s.listingService.Get(s.ctx, listing.ID)
	s.Require().NoError(err)
	s.Equal(s.alice.User.ID, got.SellerID)
	s.Equal(models.ListingAvailable, got.Status)

	s.Require().NoError(s.listingService.Delete(s.ctx, s.alice, listing.ID))

	_, err = s.listingService.Get(s.ctx, listing.ID)
	s.ErrorIs(err, apperror.ErrNotFound)

	entries, err := s.journal.ReadAll()
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *ListingServiceIntegrationTestSuite) TestList_Filters() {
	for _, in := range []service.ListingInput{
		{Make: "Toyota", Model: "Camry", Year: intPtr(2018), Price: floatPtr(22000), Mileage: intPtr(1), BodyType: "Sedan"},
		{Make: "Toyota", Model: "RAV4", Year: intPtr(2020), Price: floatPtr(18000), Mileage: intPtr(1), BodyType: "SUV"},
		{Make: "Honda", Model: "Civic", Year: intPtr(2019), Price: floatPtr(15000), Mileage: intPtr(1), BodyType: "Sedan"},
	} {
		_, err := s.listingService.Create(s.ctx, s.alice, in)
		s.Require().NoError(err)
	}

	listings, err := s.listingService.List(s.ctx, url.Values{"make": {"Toyota"}, "sortBy": {"priceLow"}})
	s.Require().NoError(err)
	s.Require().Len(listings, 2)
	s.Equal("RAV4", listings[0].Model)
	s.Equal("Camry", listings[1].Model)

	listings, err = s.listingService.List(s.ctx, url.Values{"freeText": {"sedan"}})
	s.Require().NoError(err)
	s.Len(listings, 2)
}

func (s *ListingServiceIntegrationTestSuite) TestList_RejectsUnknownKey() {
	_, err := s.listingService.List(s.ctx, url.Values{"color": {"red"}})
	s.ErrorIs(err, apperror.ErrValidation)
}

func TestListingServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ListingServiceIntegrationTestSuite))
}
