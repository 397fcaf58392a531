package models

import "time"

type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingSold      ListingStatus = "sold"
	ListingPending   ListingStatus = "pending"
)

// MinListingYear is the oldest model year accepted for a listing.
const MinListingYear = 1950

type Listing struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID     uint64        `gorm:"not null;index" json:"seller_id"`
	Make         string        `gorm:"type:varchar(50);not null;index" json:"make"`
	Model        string        `gorm:"type:varchar(50);not null" json:"model"`
	Year         int           `gorm:"not null;index" json:"year"`
	Price        float64       `gorm:"type:decimal(12,2);not null;index" json:"price"`
	Mileage      int           `gorm:"not null" json:"mileage"`
	BodyType     string        `gorm:"type:varchar(50);not null;index" json:"body_type"`
	VIN          string        `gorm:"type:varchar(17)" json:"vin"`
	Description  string        `gorm:"type:text" json:"description"`
	MainPhotoURL string        `gorm:"type:varchar(500)" json:"main_photo_url"`
	Status       ListingStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	Seller *User `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
}
