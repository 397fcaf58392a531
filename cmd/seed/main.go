package main

import (
	"context"
	"log"
	"strings"

	"github.com/Baaaki/car-marketplace/internal/config"
	"github.com/Baaaki/car-marketplace/internal/credential"
	"github.com/Baaaki/car-marketplace/internal/database"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
)

type adminConfig struct {
	Username string `env:"ADMIN_USERNAME, required"`
	Email    string `env:"ADMIN_EMAIL, required"`
	Password string `env:"ADMIN_PASSWORD, required"`
}

func main() {
	ctx := context.Background()
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction(), cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var admin adminConfig
	if err := envconfig.Process(ctx, &admin); err != nil {
		logger.Log.Fatal("Missing admin environment variables", zap.Error(err))
	}
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)

	existing, err := userRepo.GetUserByEmail(ctx, admin.Email)
	if err != nil {
		logger.Log.Fatal("Failed to look up admin", zap.Error(err))
	}
	if existing != nil {
		logger.Log.Info("Admin user already exists",
			zap.String("username", existing.Username),
			zap.String("email", existing.Email),
		)
		return
	}

	passwordHash, err := credential.NewHasher(credential.DefaultParams).Hash(admin.Password)
	if err != nil {
		logger.Log.Fatal("Failed to hash password", zap.Error(err))
	}

	user := &models.User{
		Username:     admin.Username,
		Email:        admin.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, user); err != nil {
		logger.Log.Fatal("Failed to create admin", zap.Error(err))
	}

	logger.Log.Info("Admin user created successfully",
		zap.Uint64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("email", user.Email),
	)
}
