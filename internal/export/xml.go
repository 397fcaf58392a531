package export

import (
	"encoding/xml"
	"io"

	"github.com/Baaaki/car-marketplace/internal/models"
)

type xmlListings struct {
	XMLName  xml.Name     `xml:"listings"`
	Listings []xmlListing `xml:"listing"`
}

type xmlListing struct {
	ID       uint64 `xml:"id,attr"`
	SellerID uint64 `xml:"seller_id"`
	Make     string `xml:"make"`
	Model    string `xml:"model"`
	Year     int    `xml:"year"`
	Price    string `xml:"price"`
	Mileage  int    `xml:"mileage"`
	BodyType string `xml:"body_type"`
	Status   string `xml:"status"`
}

// ListingsXML writes an indented <listings> document. Text is escaped by the encoder.
func ListingsXML(w io.Writer, listings []models.Listing) error {
	doc := xmlListings{Listings: make([]xmlListing, 0, len(listings))}
	for _, l := range listings {
		doc.Listings = append(doc.Listings, xmlListing{
			ID:       l.ID,
			SellerID: l.SellerID,
			Make:     l.Make,
			Model:    l.Model,
			Year:     l.Year,
			Price:    formatPrice(l.Price),
			Mileage:  l.Mileage,
			BodyType: l.BodyType,
			Status:   string(l.Status),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
