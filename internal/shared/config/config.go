package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/farmgate/bidEngine/internal/auction/domain"
	"github.com/farmgate/bidEngine/internal/shared/logger"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"9000" validate:"min=1000,max=65535"`

	PostgresHost     string `env:"DB_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"DB_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"DB_USER"     envDefault:"market_user"`
	PostgresPassword string `env:"DB_PASSWORD" envDefault:"market_password"`
	PostgresDb       string `env:"DB_NAME"     envDefault:"market_db"`
	PostgresSslMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	// auction policy knobs, bounds on how long an auction may run and the
	// default step each bid must beat the high bid by
	AuctionMinDuration  time.Duration `env:"AUCTION_MIN_DURATION"  envDefault:"1h"`
	AuctionMaxDuration  time.Duration `env:"AUCTION_MAX_DURATION"  envDefault:"168h"`
	BidDefaultIncrement float64       `env:"BID_DEFAULT_INCREMENT" envDefault:"1" validate:"gt=0"`
}

func LoadConfig() (*Config, error) {
	log := logger.GetLogger()

	// Load environment variables from .env file if present
	if err := godotenv.Load(".env"); err != nil {
		log.Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		log.Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// PostgresDSN builds the connection string for pgx and golang-migrate
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDb, c.PostgresSslMode,
	)
}

// AuctionPolicy converts the config knobs into the domain policy
func (c *Config) AuctionPolicy() domain.Policy {
	return domain.Policy{
		MinDuration:         c.AuctionMinDuration,
		MaxDuration:         c.AuctionMaxDuration,
		DefaultMinIncrement: decimal.NewFromFloat(c.BidDefaultIncrement),
	}
}
