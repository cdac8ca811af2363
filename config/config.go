package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

// Config is the service configuration read from the environment.
type Config struct {
	Env      string
	Port     string
	LogLevel string
	Timezone string

	StoreDriver string
	MongoURI    string
	DBName      string

	FirebaseProjectID         string
	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventTTL      time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	WebhookURL     string
	TriggerSecret  string
	AllowedOrigins []string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnvDefault("ENV", "production"),
		Port:     getEnvDefault("PORT", "8080"),
		LogLevel: getEnvDefault("LOG_LEVEL", "info"),
		Timezone: getEnvDefault("TIMEZONE", "America/Sao_Paulo"),

		StoreDriver: strings.ToLower(getEnvDefault("STORE_DRIVER", StoreFirestore)),
		MongoURI:    getEnvDefault("MONGO_URI", os.Getenv("MONGODB_URI")),
		DBName:      getEnvDefault("DB_NAME", "indique"),

		FirebaseProjectID:         os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntDefault("REDIS_DB", 0),
		EventTTL:      time.Duration(getEnvIntDefault("EVENT_TTL_HOURS", 24)) * time.Hour,

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnvIntDefault("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		TriggerSecret:  os.Getenv("TRIGGER_SECRET"),
		AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether ENV selects a development setup.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// Location returns the time zone used for commission buckets.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func validateConfig(cfg *Config) error {
	var errs []error

	switch cfg.StoreDriver {
	case StoreFirestore:
		if cfg.FirebaseProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required for the firestore store"))
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI or MONGODB_URI is required for the mongo store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreFirestore, StoreMongo, cfg.StoreDriver))
	}

	if cfg.TriggerSecret == "" && !cfg.IsDevelopment() {
		errs = append(errs, errors.New("TRIGGER_SECRET is required outside development"))
	}
	if _, err := cfg.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
