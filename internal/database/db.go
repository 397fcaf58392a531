package database

import (
	"fmt"

	"github.com/Baaaki/car-marketplace/internal/config"
	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database selected by cfg.DBDriver ("postgres" or "sqlite").
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, TranslateError(err)
	}

	logger.Log.Info("Database connected successfully",
		zap.String("driver", cfg.DBDriver),
	)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Listing{}, &models.Message{}); err != nil {
		return TranslateError(err)
	}

	logger.Log.Info("Database migration completed")
	return nil
}

// Ping checks that the underlying connection pool can reach the server.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return TranslateError(err)
	}
	return TranslateError(sqlDB.Ping())
}
