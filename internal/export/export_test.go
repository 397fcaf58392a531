package export

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleListings() []models.Listing {
	return []models.Listing{
		{ID: 1, SellerID: 7, Make: "Honda", Model: "Civic", Year: 2019, Price: 15000, Mileage: 40000, BodyType: "Sedan", Status: models.ListingAvailable,
			CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 2, SellerID: 8, Make: "Ford", Model: `F-150 "Raptor", <V8> & more`, Year: 2021, Price: 52999.5, Mileage: 12000, BodyType: "Truck", Status: models.ListingSold},
	}
}

func TestListingsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListingsCSV(&buf, sampleListings()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, listingHeader, records[0])
	assert.Equal(t, []string{"1", "7", "Honda", "Civic", "2019", "15000.00", "40000", "Sedan", "", "available", "2025-05-01T10:00:00Z"}, records[1])
	assert.Equal(t, `F-150 "Raptor", <V8> & more`, records[2][3])
	assert.Equal(t, "52999.50", records[2][5])
	assert.Equal(t, "", records[2][10])
}

func TestListingsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListingsCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestMessagesCSV(t *testing.T) {
	listingID := uint64(3)
	messages := []models.Message{
		{ID: 1, SenderID: 1, ReceiverID: 2, ListingID: &listingID, MessageText: "multi\nline, text", SentAt: time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
		{ID: 2, SenderID: 2, ReceiverID: 1, MessageText: "reply"},
	}

	var buf bytes.Buffer
	require.NoError(t, MessagesCSV(&buf, messages))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"1", "1", "2", "3", "multi\nline, text", "2025-05-01T10:00:00Z"}, records[1])
	assert.Equal(t, "", records[2][3])
}

func TestListingsXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListingsXML(&buf, sampleListings()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, xml.Header))
	assert.Contains(t, out, `<listing id="1">`)
	assert.NotContains(t, out, "<V8>")

	var doc xmlListings
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Listings, 2)
	assert.Equal(t, `F-150 "Raptor", <V8> & more`, doc.Listings[1].Model)
	assert.Equal(t, "sold", doc.Listings[1].Status)
	assert.Equal(t, "15000.00", doc.Listings[0].Price)
}

func TestListingsXML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListingsXML(&buf, nil))
	assert.Contains(t, buf.String(), "<listings></listings>")
}
