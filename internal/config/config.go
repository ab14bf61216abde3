package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/models"
)

type Config struct {
	AppPort         string `env:"APP_PORT" envDefault:"8080"`
	DBDSN           string `env:"DB_DSN,required,notEmpty"`
	JWTSecret       string `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiresMin   int    `env:"JWT_EXPIRES_MIN" envDefault:"10080"`
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Used only the first time the platform config row is created.
	OwnerAddress       string `env:"OWNER_ADDRESS,required,notEmpty"`
	PlatformFeePercent int    `env:"PLATFORM_FEE_PERCENT" envDefault:"5"`
	JobTimeoutDays     int    `env:"JOB_TIMEOUT_DAYS" envDefault:"7"`
	DisputeWindowDays  int    `env:"DISPUTE_WINDOW_DAYS" envDefault:"3"`

	RateLimitPerSec float64 `env:"RATE_LIMIT_PER_SEC" envDefault:"10"`
	RateLimitBurst  int     `env:"RATE_LIMIT_BURST" envDefault:"20"`
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpiresMin) * time.Minute
}

// InitialPlatform is the config the ledger is bootstrapped with.
func (c Config) InitialPlatform() (models.PlatformConfig, error) {
	owner, err := models.ParseAddress(c.OwnerAddress)
	if err != nil {
		return models.PlatformConfig{}, fmt.Errorf("OWNER_ADDRESS: %w", err)
	}
	return models.PlatformConfig{
		Owner:              owner,
		PlatformFeePercent: c.PlatformFeePercent,
		JobTimeoutDays:     c.JobTimeoutDays,
		DisputeWindowDays:  c.DisputeWindowDays,
	}, nil
}
