package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	HTTP struct {
		Port               string   `envconfig:"PORT" default:"8080"`
		CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Log struct {
		Level       string `envconfig:"LOG_LEVEL" default:"info"`
		Format      string `envconfig:"LOG_FORMAT" default:"json"`
		Environment string `envconfig:"ENVIRONMENT" default:"local"`
	}

	Postgres struct {
		DSN string `envconfig:"POSTGRES_DSN"`
	}

	Auth struct {
		JWTSecret       string        `envconfig:"JWT_SECRET"`
		JWTTTL          time.Duration `envconfig:"JWT_TTL" default:"24h"`
		SessionTTLHours int           `envconfig:"SESSION_TTL_HOURS"`
		// Bootstrap admin, created only while the users table is empty.
		AdminUsername string `envconfig:"ADMIN_USERNAME"`
		AdminEmail    string `envconfig:"ADMIN_EMAIL"`
		AdminPassword string `envconfig:"ADMIN_PASSWORD"`
		AdminFullName string `envconfig:"ADMIN_FULL_NAME" default:"Administrator"`
	}

	Temporal struct {
		Address   string `envconfig:"TEMPORAL_ADDRESS" default:"localhost:7233"`
		Namespace string `envconfig:"TEMPORAL_NAMESPACE" default:"default"`
		Disabled  bool   `envconfig:"TEMPORAL_DISABLED"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB"`
	}

	Kafka struct {
		Brokers       []string `envconfig:"KAFKA_BROKERS"`
		ActivityTopic string   `envconfig:"KAFKA_ACTIVITY_TOPIC" default:"pos.activities"`
	}

	Activity struct {
		Buffer        int `envconfig:"ACTIVITY_BUFFER" default:"256"`
		RetentionDays int `envconfig:"ACTIVITY_RETENTION_DAYS" default:"90"`
	}

	Dashboard struct {
		CacheTTL          time.Duration `envconfig:"DASHBOARD_CACHE_TTL" default:"30s"`
		LowStockThreshold int           `envconfig:"LOW_STOCK_THRESHOLD" default:"10"`
	}
}

// LoadConfig reads an optional .env file, then the environment, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	cfg.Postgres.DSN = strings.TrimSpace(cfg.Postgres.DSN)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Auth.JWTSecret) == "":
		return errors.New("JWT_SECRET is required")
	case c.Auth.JWTTTL <= 0:
		return errors.New("JWT_TTL must be positive")
	case c.Auth.SessionTTLHours < 0:
		return errors.New("SESSION_TTL_HOURS must not be negative")
	case c.Activity.Buffer <= 0:
		return errors.New("ACTIVITY_BUFFER must be positive")
	case c.Activity.RetentionDays <= 0:
		return errors.New("ACTIVITY_RETENTION_DAYS must be positive")
	case c.Dashboard.LowStockThreshold < 0:
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	case c.Auth.AdminUsername != "" && (c.Auth.AdminEmail == "" || c.Auth.AdminPassword == ""):
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required with ADMIN_USERNAME")
	}
	return nil
}

// SessionTTL is the access token lifetime. SESSION_TTL_HOURS, when set, wins
// over JWT_TTL.
func (c Config) SessionTTL() time.Duration {
	if c.Auth.SessionTTLHours > 0 {
		return time.Duration(c.Auth.SessionTTLHours) * time.Hour
	}
	return c.Auth.JWTTTL
}

// ActivityRetention is how long activity entries are kept before purging.
func (c Config) ActivityRetention() time.Duration {
	return time.Duration(c.Activity.RetentionDays) * 24 * time.Hour
}
