package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return database.TranslateError(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByEmail returns (nil, nil) when no user has that email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	if !storable(id) {
		return nil, nil
	}
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) first(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, database.TranslateError(err)
	}
	return &user, nil
}

// GetAllUsers returns every user, newest first
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&users).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	return users, nil
}
