package models

import "time"

// Message is a direct message between two users, optionally about a listing.
// ListingID is not a foreign key: deleting a listing leaves it dangling.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    uint64    `gorm:"not null;index" json:"sender_id"`
	ReceiverID  uint64    `gorm:"not null;index" json:"receiver_id"`
	ListingID   *uint64   `gorm:"index" json:"listing_id"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	SentAt      time.Time `gorm:"not null;index" json:"sent_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Sender   *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver *User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
}
