// Package export renders listings and messages as CSV or XML documents.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
)

var listingHeader = []string{"ID", "Seller ID", "Make", "Model", "Year", "Price", "Mileage", "Body Type", "VIN", "Status", "Created At"}

var messageHeader = []string{"ID", "Sender ID", "Receiver ID", "Listing ID", "Message", "Sent At"}

// ListingsCSV writes a header row followed by one row per listing.
func ListingsCSV(w io.Writer, listings []models.Listing) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(listingHeader); err != nil {
		return err
	}

	for _, l := range listings {
		row := []string{
			strconv.FormatUint(l.ID, 10),
			strconv.FormatUint(l.SellerID, 10),
			l.Make,
			l.Model,
			strconv.Itoa(l.Year),
			formatPrice(l.Price),
			strconv.Itoa(l.Mileage),
			l.BodyType,
			l.VIN,
			string(l.Status),
			formatTime(l.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// MessagesCSV writes a header row followed by one row per message.
// A message without a listing has an empty Listing ID cell.
func MessagesCSV(w io.Writer, messages []models.Message) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(messageHeader); err != nil {
		return err
	}

	for _, m := range messages {
		listingID := ""
		if m.ListingID != nil {
			listingID = strconv.FormatUint(*m.ListingID, 10)
		}
		row := []string{
			strconv.FormatUint(m.ID, 10),
			strconv.FormatUint(m.SenderID, 10),
			strconv.FormatUint(m.ReceiverID, 10),
			listingID,
			m.MessageText,
			formatTime(m.SentAt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
