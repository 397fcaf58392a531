package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(message).Error)
}

// GetMessageByID returns (nil, nil) when the message does not exist.
func (r *MessageRepository) GetMessageByID(ctx context.Context, id uint64) (*models.Message, error) {
	if !storable(id) {
		return nil, nil
	}
	var message models.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.TranslateError(err)
	}
	return &message, nil
}

// Inbox returns messages received by userID, newest first.
func (r *MessageRepository) Inbox(ctx context.Context, userID uint64) ([]models.Message, error) {
	return r.find(ctx, "sent_at DESC, id DESC", "receiver_id = ?", userID)
}

// Sent returns messages sent by userID, newest first.
func (r *MessageRepository) Sent(ctx context.Context, userID uint64) ([]models.Message, error) {
	return r.find(ctx, "sent_at DESC, id DESC", "sender_id = ?", userID)
}

// Thread returns the conversation between two users in the order it happened.
// The result does not depend on which participant is passed first.
func (r *MessageRepository) Thread(ctx context.Context, userID, otherID uint64) ([]models.Message, error) {
	if !storable(otherID) {
		return make([]models.Message, 0), nil
	}
	return r.find(ctx, "sent_at ASC, id ASC",
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, otherID, otherID, userID)
}

// Involving returns every message userID sent or received, newest first.
func (r *MessageRepository) Involving(ctx context.Context, userID uint64) ([]models.Message, error) {
	return r.find(ctx, "sent_at DESC, id DESC", "sender_id = ? OR receiver_id = ?", userID, userID)
}

func (r *MessageRepository) find(ctx context.Context, order string, cond string, args ...any) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where(cond, args...).
		Order(order).
		Find(&messages).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return messages, nil
}

func (r *MessageRepository) UpdateText(ctx context.Context, id uint64, text string) error {
	if !storable(id) {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Update("message_text", text).Error
	return database.TranslateError(err)
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id uint64) error {
	if !storable(id) {
		return nil
	}
	return database.TranslateError(r.db.WithContext(ctx).Delete(&models.Message{}, id).Error)
}
