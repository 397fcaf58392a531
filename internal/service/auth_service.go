package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"github.com/Baaaki/car-marketplace/internal/credential"
	"github.com/Baaaki/car-marketplace/internal/metrics"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/policy"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/session"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=4,max=128"`
	FirstName   string `json:"first_name" validate:"max=50"`
	LastName    string `json:"last_name" validate:"max=50"`
	PhoneNumber string `json:"phone_number" validate:"max=30"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	userRepo *repository.UserRepository
	sessions session.Store
	hasher   *credential.Hasher
}

func NewAuthService(userRepo *repository.UserRepository, sessions session.Store, hasher *credential.Hasher) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		hasher:   hasher,
	}
}

// Register creates a user with role "user" and logs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *session.Session, error) {
	start := time.Now()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	logger.Log.Debug("Processing user registration",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	// 1. Validate input
	if err := validateStruct(in); err != nil {
		logger.Log.Warn("Registration validation failed",
			zap.String("username", in.Username),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, nil, err
	}

	// 2. Check if email already exists
	existingUser, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Log.Warn("Email already exists", zap.String("email", in.Email))
		return nil, nil, apperror.Conflict("email already exists")
	}

	// 3. Check if username already exists
	existingUser, err = s.userRepo.GetUserByUsername(ctx, in.Username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if existingUser != nil {
		logger.Log.Warn("Username already exists", zap.String("username", in.Username))
		return nil, nil, apperror.Conflict("username already exists")
	}

	// 4. Hash password (Argon2id)
	hashStart := time.Now()
	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, nil, err
	}
	hashDuration := time.Since(hashStart)

	// 5. Create user
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		// A concurrent registration can win the race past steps 2 and 3.
		if errors.Is(err, &apperror.Error{Kind: apperror.KindStorage, Storage: apperror.StorageDuplicate}) {
			logger.Log.Warn("Registration lost uniqueness race",
				zap.String("username", in.Username),
				zap.String("email", in.Email),
			)
			return nil, nil, apperror.Conflict("username or email already exists")
		}
		logger.Log.Error("Failed to create user in database",
			zap.String("username", in.Username),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, nil, err
	}

	// 6. Start session
	sess, err := s.sessions.Create(ctx, user.Public())
	if err != nil {
		logger.Log.Error("Failed to create session",
			zap.Uint64("user_id", user.ID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	metrics.UsersRegisteredTotal.Inc()

	logger.Log.Info("User registered successfully",
		zap.Uint64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, sess, nil
}

// Login fails with NotFound for an unknown email and Auth for a wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, *session.Session, error) {
	start := time.Now()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	logger.Log.Debug("Processing user login", zap.String("email", in.Email))

	if err := validateStruct(in); err != nil {
		return nil, nil, err
	}

	// 1. Get user by email
	user, err := s.userRepo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, nil, err
	}
	if user == nil {
		metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
		logger.Log.Warn("Login failed: user not found", zap.String("email", in.Email))
		return nil, nil, apperror.NotFound("user not found")
	}

	// 2. Verify password
	verifyStart := time.Now()
	valid, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.Uint64("user_id", user.ID),
			zap.Error(err),
		)
		return nil, nil, err
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		logger.Log.Warn("Login failed: invalid password",
			zap.String("email", in.Email),
			zap.Uint64("user_id", user.ID),
		)
		return nil, nil, apperror.Auth("incorrect password")
	}

	// 3. Start session
	sess, err := s.sessions.Create(ctx, user.Public())
	if err != nil {
		logger.Log.Error("Failed to create session",
			zap.Uint64("user_id", user.ID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	logger.Log.Info("User logged in successfully",
		zap.Uint64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, sess, nil
}

// Logout destroys the session behind token. It succeeds with no session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		logger.Log.Error("Failed to destroy session", zap.Error(err))
		return err
	}
	return nil
}

// CurrentUser returns the user bound to sess.
func (s *AuthService) CurrentUser(sess *session.Session) (models.PublicUser, error) {
	if err := policy.RequireLogin(sess); err != nil {
		return models.PublicUser{}, err
	}
	return sess.User, nil
}

// ListUsers returns every user. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, sess *session.Session) ([]*models.User, error) {
	if err := policy.RequireRole(sess, models.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.userRepo.GetAllUsers(ctx)
	if err != nil {
		logger.Log.Error("Failed to fetch all users", zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Fetched all users",
		zap.Uint64("admin_id", sess.User.ID),
		zap.Int("count", len(users)),
	)

	return users, nil
}
