package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/yungbote/spacekeeper-backend/internal/data/db"
	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
)

const devJWTSecret = "spacekeeper-dev-secret"

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	LogMode     string `env:"LOG_MODE" envDefault:"development"`
	Environment string `env:"APP_ENV" envDefault:"local"`
	Version     string `env:"APP_VERSION" envDefault:"dev"`

	JWTSecretKey    string        `env:"JWT_SECRET_KEY"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	DBDriver         string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresName     string `env:"POSTGRES_NAME" envDefault:"spacekeeper"`
	SQLitePath       string `env:"SQLITE_PATH" envDefault:"spacekeeper.db"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisChannel  string `env:"REDIS_CHANNEL" envDefault:"spacekeeper:sse"`

	ObjectStorageMode          string `env:"OBJECT_STORAGE_MODE"`
	StorageEmulatorHost        string `env:"STORAGE_EMULATOR_HOST"`
	LocalStorageDir            string `env:"LOCAL_STORAGE_DIR"`
	ObjectStoragePublicBaseURL string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`
	GCPCredentials             string `env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
	AvatarBucket               string `env:"AVATAR_GCS_BUCKET_NAME"`
	SpaceBucket                string `env:"SPACE_GCS_BUCKET_NAME"`
	ItemBucket                 string `env:"ITEM_GCS_BUCKET_NAME"`
	AvatarCDN                  string `env:"AVATAR_CDN_DOMAIN"`
	SpaceCDN                   string `env:"SPACE_CDN_DOMAIN"`
	ItemCDN                    string `env:"ITEM_CDN_DOMAIN"`

	AllowedOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ReminderPollInterval time.Duration `env:"REMINDER_POLL_INTERVAL" envDefault:"30s"`

	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridBaseURL   string `env:"SENDGRID_BASE_URL"`
	SendGridFromEmail string `env:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `env:"SENDGRID_FROM_NAME" envDefault:"Spacekeeper"`

	MetricsEnabled bool   `env:"METRICS_ENABLED"`
	MetricsAddr    string `env:"METRICS_ADDR"`

	OtelEnabled     bool              `env:"OTEL_ENABLED"`
	OtelSampleRatio float64           `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
	OtelEndpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelHeaders     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	OtelInsecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE"`
}

// LoadConfig reads Config from the environment. A missing JWT secret is
// only tolerated in development mode.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.LogMode = strings.ToLower(strings.TrimSpace(c.LogMode))
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		if c.LogMode != "development" {
			return fmt.Errorf("JWT_SECRET_KEY is required outside development")
		}
		c.JWTSecretKey = devJWTSecret
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.RefreshTokenTTL < c.AccessTokenTTL {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be at least ACCESS_TOKEN_TTL")
	}
	c.SendGridAPIKey = strings.TrimSpace(c.SendGridAPIKey)
	if c.SendGridAPIKey != "" && strings.TrimSpace(c.SendGridFromEmail) == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	switch strings.ToLower(strings.TrimSpace(c.DBDriver)) {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c Config) Database() db.Config {
	return db.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) Buckets(storage gcp.ObjectStorageConfig) gcp.BucketConfig {
	return gcp.BucketConfig{
		Storage:       storage,
		Credentials:   c.GCPCredentials,
		AvatarBucket:  c.AvatarBucket,
		SpaceBucket:   c.SpaceBucket,
		ItemBucket:    c.ItemBucket,
		AvatarCDN:     c.AvatarCDN,
		SpaceCDN:      c.SpaceCDN,
		ItemCDN:       c.ItemCDN,
		PublicBaseURL: c.ObjectStoragePublicBaseURL,
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: serviceName,
		Environment: c.Environment,
		Version:     c.Version,
		SampleRatio: c.OtelSampleRatio,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
	}
}
