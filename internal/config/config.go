package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/deliverzler/functions/pkg/config"
	"github.com/deliverzler/functions/pkg/database"
	"github.com/deliverzler/functions/pkg/tracing"
)

// Backend names accepted by the selector variables.
const (
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"

	IdentityLocal    = "local"
	IdentityFirebase = "firebase"

	MessagingKafka = "kafka"
	MessagingFCM   = "fcm"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the functions server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Per-IP limit on the auth and callable routes. RATE_LIMIT_RPS=0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// Backend selection
	DocumentStore     string `env:"DOCUMENT_STORE" envDefault:"postgres"`
	IdentityProvider  string `env:"IDENTITY_PROVIDER" envDefault:"local"`
	MessagingProvider string `env:"MESSAGING_PROVIDER" envDefault:"kafka"`

	// Firebase
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"deliverzler"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"deliverzler_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"deliverzler"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int    `env:"POSTGRES_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"POSTGRES_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
	SlowQueryThresholdMs  int    `env:"POSTGRES_SLOW_QUERY_MS" envDefault:"200"`

	// Redis. An empty host keeps the idempotency store in memory.
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers       []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaConsumerGroup string        `env:"KAFKA_CONSUMER_GROUP" envDefault:"deliverzler-functions"`
	KafkaMaxAttempts   int           `env:"KAFKA_MAX_ATTEMPTS" envDefault:"3"`
	KafkaRetryBackoff  time.Duration `env:"KAFKA_RETRY_BACKOFF" envDefault:"500ms"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Notifications
	NotificationTopic string `env:"NOTIFICATION_TOPIC" envDefault:"general"`

	// JWT, used by the local identity provider.
	JWTSecret      string `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTTokenExpiry string `env:"JWT_TOKEN_EXPIRY" envDefault:"1h"`

	// Tracing
	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load functions config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("invalid rate limit burst: %d", c.RateLimitBurst)
	}

	switch c.DocumentStore {
	case StorePostgres, StoreFirestore:
	default:
		return fmt.Errorf("DOCUMENT_STORE must be %q or %q, got %q", StorePostgres, StoreFirestore, c.DocumentStore)
	}
	switch c.IdentityProvider {
	case IdentityLocal, IdentityFirebase:
	default:
		return fmt.Errorf("IDENTITY_PROVIDER must be %q or %q, got %q", IdentityLocal, IdentityFirebase, c.IdentityProvider)
	}
	switch c.MessagingProvider {
	case MessagingKafka, MessagingFCM:
	default:
		return fmt.Errorf("MESSAGING_PROVIDER must be %q or %q, got %q", MessagingKafka, MessagingFCM, c.MessagingProvider)
	}

	if c.UsesFirebase() && c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required when a Firebase backend is selected")
	}

	if c.IdentityProvider == IdentityLocal {
		if _, err := c.TokenExpiry(); err != nil {
			return err
		}
		// In non-development environments, require an explicitly set, strong JWT secret.
		if c.Environment != "development" {
			if c.JWTSecret == defaultJWTSecret {
				return fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", c.Environment)
			}
			if len(c.JWTSecret) < 32 {
				return fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(c.JWTSecret))
			}
		}
	}

	return nil
}

// UsesFirebase reports whether any backend needs a Firebase app.
func (c *Config) UsesFirebase() bool {
	return c.DocumentStore == StoreFirestore ||
		c.IdentityProvider == IdentityFirebase ||
		c.MessagingProvider == MessagingFCM
}

// UsesPostgres reports whether any backend needs the PostgreSQL pool.
func (c *Config) UsesPostgres() bool {
	return c.DocumentStore == StorePostgres || c.IdentityProvider == IdentityLocal
}

// TokenExpiry parses JWT_TOKEN_EXPIRY.
func (c *Config) TokenExpiry() (time.Duration, error) {
	d, err := time.ParseDuration(c.JWTTokenExpiry)
	if err != nil {
		return 0, fmt.Errorf("parse JWT token expiry %q: %w", c.JWTTokenExpiry, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("JWT token expiry must be positive, got %s", d)
	}
	return d, nil
}

// Postgres returns the pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Redis returns the Redis configuration, or nil when no host is set.
func (c *Config) Redis() *database.RedisConfig {
	if c.RedisHost == "" {
		return nil
	}
	return &database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
