package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	OpsPort   string        `env:"OPS_PORT,   default=9090"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=168h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`
	Timezone  string        `env:"TIMEZONE,   default=Local"`

	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	FCM       FCMConfig
	Headcount HeadcountConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=office_attendance"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// SMTPConfig is optional; an empty host disables email delivery.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,      default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,      default=no-reply@office-lunch.local"`
	FromName string `env:"SMTP_FROM_NAME, default=Office Lunch"`
}

// FCMConfig is optional; an empty project id disables push delivery.
type FCMConfig struct {
	ProjectID       string `env:"FCM_PROJECT_ID"`
	CredentialsFile string `env:"FCM_CREDENTIALS_FILE"`
}

type HeadcountConfig struct {
	Cron    string `env:"HEADCOUNT_CRON,    default=30 9 * * 1-5"`
	Enabled bool   `env:"HEADCOUNT_ENABLED, default=true"`
	Workers int    `env:"HEADCOUNT_WORKERS, default=8"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadContext(context.Background(), nil)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadContext is Load with an explicit lookuper; nil reads the process
// environment.
func LoadContext(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	ecfg := &envconfig.Config{Target: &cfg, Lookuper: lookuper}
	if lookuper == nil {
		ecfg.Lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, ecfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	return nil
}

// Location is the office time zone. Validate has already checked it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
