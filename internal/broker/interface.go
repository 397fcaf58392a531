package broker

import (
	"context"
	"time"
)

type EventType string

const (
	EventMessageSent    EventType = "message.sent"
	EventMessageUpdated EventType = "message.updated"
	EventMessageDeleted EventType = "message.deleted"
)

// Event is pushed to every participant of a message when it changes.
type Event struct {
	Type        EventType `json:"type"`
	MessageID   uint64    `json:"message_id"`
	SenderID    uint64    `json:"sender_id"`
	ReceiverID  uint64    `json:"receiver_id"`
	ListingID   *uint64   `json:"listing_id,omitempty"`
	MessageText string    `json:"message_text,omitempty"`
	SentAt      time.Time `json:"sent_at"`
}

// Notifier fans message events out to per-user channels.
type Notifier interface {
	Publish(ctx context.Context, userID uint64, event Event) error
	Subscribe(ctx context.Context, userID uint64) (*Subscription, error)
	Close() error
}
