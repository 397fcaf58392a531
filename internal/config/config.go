package config

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServerPort  string `env:"SERVER_PORT, default=:4000"`
	Environment string `env:"ENVIRONMENT, default=development"`
	LogLevel    string `env:"LOG_LEVEL"` // debug, info, warn, error; empty uses the environment default

	DBDriver    string `env:"DB_DRIVER, default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL, default=redis://localhost:6379/0"`

	SessionTTL    time.Duration `env:"SESSION_TTL, default=24h"`
	SessionCookie string        `env:"SESSION_COOKIE, default=car_market_sid"`
	CORSOrigin    string        `env:"CORS_ORIGIN, default=http://localhost:5173"`

	// Rate limiting
	RateLimitMaxRequests int           `env:"RATE_LIMIT_MAX_REQUESTS, default=100"`
	RateLimitWindow      time.Duration `env:"RATE_LIMIT_WINDOW, default=1m"`
	RateLimitBlockTime   time.Duration `env:"RATE_LIMIT_BLOCK_TIME, default=5m"`

	UploadDir      string `env:"UPLOAD_DIR, default=./uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES, default=5242880"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL, default=http://localhost:4000"`

	AuditPath string `env:"AUDIT_PATH, default=./data/listing_audit.log"`
}

// IsProduction reports whether secure cookies and HSTS should be enabled.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load() *Config {
	// Try to load .env file, but don't fail if it doesn't exist
	// (Docker containers use environment variables directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := FromLookuper(context.Background(), envconfig.OsLookuper())
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// FromLookuper builds a Config from an arbitrary variable source.
func FromLookuper(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
