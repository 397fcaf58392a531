package service

import (
	"context"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/broker"
	"github.com/Baaaki/car-marketplace/internal/metrics"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/policy"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
)

type SendInput struct {
	ReceiverID  uint64  `json:"receiver_id" validate:"required"`
	ListingID   *uint64 `json:"listing_id"`
	MessageText string  `json:"message_text" validate:"required,max=1000"`
}

type textInput struct {
	MessageText string `json:"message_text" validate:"required,max=1000"`
}

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	listingRepo *repository.ListingRepository
	notifier    broker.Notifier
}

func NewMessageService(
	messageRepo *repository.MessageRepository,
	userRepo *repository.UserRepository,
	listingRepo *repository.ListingRepository,
	notifier broker.Notifier,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
	}
}

// Send stores a message from the session's user. The receiver and, when given,
// the listing must exist.
func (s *MessageService) Send(ctx context.Context, sess *session.Session, in SendInput) (*models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}

	if in.ListingID != nil && *in.ListingID == 0 {
		in.ListingID = nil
	}

	// 1. Validate input
	verr := validateStruct(in)
	if verr != nil && apperror.KindOf(verr) != apperror.KindValidation {
		return nil, verr
	}

	// 2. Check references
	var missing []apperror.FieldError
	if in.ReceiverID != 0 {
		receiver, err := s.userRepo.GetUserByID(ctx, in.ReceiverID)
		if err != nil {
			logger.Log.Error("Failed to look up receiver",
				zap.Uint64("receiver_id", in.ReceiverID),
				zap.Error(err),
			)
			return nil, err
		}
		if receiver == nil {
			missing = append(missing, apperror.FieldError{Field: "receiver_id", Message: "receiver_id does not name an existing user"})
		}
	}
	if in.ListingID != nil {
		listing, err := s.listingRepo.GetByID(ctx, *in.ListingID)
		if err != nil {
			logger.Log.Error("Failed to look up listing",
				zap.Uint64("listing_id", *in.ListingID),
				zap.Error(err),
			)
			return nil, err
		}
		if listing == nil {
			missing = append(missing, apperror.FieldError{Field: "listing_id", Message: "listing_id does not name an existing listing"})
		}
	}
	if err := mergeValidation(verr, missing...); err != nil {
		logger.Log.Warn("Message validation failed",
			zap.Uint64("sender_id", sess.User.ID),
			zap.Error(err),
		)
		return nil, err
	}

	// 3. Persist
	msg := &models.Message{
		SenderID:    sess.User.ID,
		ReceiverID:  in.ReceiverID,
		ListingID:   in.ListingID,
		MessageText: in.MessageText,
		SentAt:      time.Now().UTC(),
	}
	if err := s.messageRepo.CreateMessage(ctx, msg); err != nil {
		logger.Log.Error("Failed to store message",
			zap.Uint64("sender_id", msg.SenderID),
			zap.Uint64("receiver_id", msg.ReceiverID),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues("send").Inc()

	// 4. Notify the receiver
	s.notify(ctx, broker.EventMessageSent, msg, msg.ReceiverID)

	logger.Log.Info("Message sent",
		zap.Uint64("message_id", msg.ID),
		zap.Uint64("sender_id", msg.SenderID),
		zap.Uint64("receiver_id", msg.ReceiverID),
	)

	return msg, nil
}

// Inbox returns messages received by the session's user, newest first.
func (s *MessageService) Inbox(ctx context.Context, sess *session.Session) ([]models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}
	return s.messageRepo.Inbox(ctx, sess.User.ID)
}

// Sent returns messages sent by the session's user, newest first.
func (s *MessageService) Sent(ctx context.Context, sess *session.Session) ([]models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}
	return s.messageRepo.Sent(ctx, sess.User.ID)
}

// Thread returns the conversation with otherID, oldest first.
func (s *MessageService) Thread(ctx context.Context, sess *session.Session, otherID uint64) ([]models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}
	return s.messageRepo.Thread(ctx, sess.User.ID, otherID)
}

// Involving returns everything the session's user sent or received.
func (s *MessageService) Involving(ctx context.Context, sess *session.Session) ([]models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}
	return s.messageRepo.Involving(ctx, sess.User.ID)
}

// UpdateText replaces the text of a message. Only the sender or an admin may edit.
func (s *MessageService) UpdateText(ctx context.Context, sess *session.Session, id uint64, text string) (*models.Message, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return nil, err
	}

	msg, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.RequireOwnerOrAdmin(sess, msg.SenderID); err != nil {
		logger.Log.Warn("Message update forbidden",
			zap.Uint64("message_id", id),
			zap.Uint64("user_id", sess.User.ID),
		)
		return nil, err
	}

	if err := validateStruct(textInput{MessageText: text}); err != nil {
		return nil, err
	}

	if err := s.messageRepo.UpdateText(ctx, id, text); err != nil {
		logger.Log.Error("Failed to update message",
			zap.Uint64("message_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	msg.MessageText = text

	metrics.MessagesTotal.WithLabelValues("update").Inc()
	s.notify(ctx, broker.EventMessageUpdated, msg, msg.ReceiverID)

	logger.Log.Info("Message updated",
		zap.Uint64("message_id", id),
		zap.Uint64("user_id", sess.User.ID),
	)

	return msg, nil
}

// Delete removes a message. The sender, the receiver or an admin may delete.
func (s *MessageService) Delete(ctx context.Context, sess *session.Session, id uint64) error {
	if err := policy.RequireLogin(sess); err != nil {
		return err
	}

	msg, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.RequireParticipantOrAdmin(sess, msg.SenderID, msg.ReceiverID); err != nil {
		logger.Log.Warn("Message delete forbidden",
			zap.Uint64("message_id", id),
			zap.Uint64("user_id", sess.User.ID),
		)
		return err
	}

	if err := s.messageRepo.DeleteMessage(ctx, id); err != nil {
		logger.Log.Error("Failed to delete message",
			zap.Uint64("message_id", id),
			zap.Error(err),
		)
		return err
	}

	metrics.MessagesTotal.WithLabelValues("delete").Inc()
	msg.MessageText = ""
	s.notify(ctx, broker.EventMessageDeleted, msg, msg.SenderID, msg.ReceiverID)

	logger.Log.Info("Message deleted",
		zap.Uint64("message_id", id),
		zap.Uint64("user_id", sess.User.ID),
	)

	return nil
}

func (s *MessageService) load(ctx context.Context, id uint64) (*models.Message, error) {
	msg, err := s.messageRepo.GetMessageByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to load message",
			zap.Uint64("message_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	if msg == nil {
		return nil, apperror.NotFound("message not found")
	}
	return msg, nil
}

// notify is best effort: the message is already stored.
func (s *MessageService) notify(ctx context.Context, typ broker.EventType, msg *models.Message, recipients ...uint64) {
	if s.notifier == nil {
		return
	}

	event := broker.Event{
		Type:        typ,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		ReceiverID:  msg.ReceiverID,
		ListingID:   msg.ListingID,
		MessageText: msg.MessageText,
		SentAt:      msg.SentAt,
	}

	seen := make(map[uint64]bool, len(recipients))
	for _, userID := range recipients {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		if err := s.notifier.Publish(ctx, userID, event); err != nil {
			logger.Log.Warn("Failed to publish message event",
				zap.String("type", string(typ)),
				zap.Uint64("message_id", msg.ID),
				zap.Uint64("user_id", userID),
				zap.Error(err),
			)
		}
	}
}
