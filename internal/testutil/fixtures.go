package testutil

import (
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/credential"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/session"
	"gorm.io/gorm"
)

// FastParams are cheap Argon2 settings for tests.
var FastParams = credential.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// Hasher is a credential.Hasher using FastParams.
func Hasher() *credential.Hasher {
	return credential.NewHasher(FastParams)
}

// CreateTestUser inserts a user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := Hasher().Hash(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

// CreateTestListing inserts an available listing owned by sellerID
func CreateTestListing(t *testing.T, db *gorm.DB, sellerID uint64, make, model, bodyType string, price float64) *models.Listing {
	t.Helper()

	listing := &models.Listing{
		SellerID: sellerID,
		Make:     make,
		Model:    model,
		Year:     2018,
		Price:    price,
		Mileage:  50000,
		BodyType: bodyType,
		Status:   models.ListingAvailable,
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("Failed to create test listing: %v", err)
	}
	return listing
}

// CreateTestMessage inserts a message sent at the given time
func CreateTestMessage(t *testing.T, db *gorm.DB, senderID, receiverID uint64, text string, sentAt time.Time) *models.Message {
	t.Helper()

	msg := &models.Message{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		MessageText: text,
		SentAt:      sentAt,
	}
	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("Failed to create test message: %v", err)
	}
	return msg
}

// SessionFor builds an in-memory session for user, bypassing the store
func SessionFor(user *models.User) *session.Session {
	return &session.Session{
		ID:        "test-session-" + user.Username,
		User:      user.Public(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}
