package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{
		"ENV", "PORT", "LOG_LEVEL", "TIMEZONE", "STORE_DRIVER", "MONGO_URI", "MONGODB_URI", "DB_NAME",
		"FIREBASE_PROJECT_ID", "REDIS_ADDR", "REDIS_DB", "EVENT_TTL_HOURS", "SMTP_PORT",
		"TRIGGER_SECRET", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"FIREBASE_PROJECT_ID": "indique-test",
		"TRIGGER_SECRET":      "secret",
		"TIMEZONE":            "UTC",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreFirestore, cfg.StoreDriver)
	assert.Equal(t, "indique", cfg.DBName)
	assert.Equal(t, 24*time.Hour, cfg.EventTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadMongo(t *testing.T) {
	setEnv(t, map[string]string{
		"ENV":                  "development",
		"STORE_DRIVER":         "Mongo",
		"MONGODB_URI":          "mongodb://localhost:27017",
		"TIMEZONE":             "UTC",
		"EVENT_TTL_HOURS":      "6",
		"REDIS_DB":             "not-a-number",
		"CORS_ALLOWED_ORIGINS": " https://a.example.com , ,https://b.example.com",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, StoreMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, 6*time.Hour, cfg.EventTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	// Development may run without a trigger secret
	assert.Empty(t, cfg.TriggerSecret)
}

func TestLoadValidation(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_DRIVER": "postgres",
		"TIMEZONE":     "Mars/Olympus",
	})

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "TRIGGER_SECRET")
	assert.Contains(t, err.Error(), "TIMEZONE")

	setEnv(t, map[string]string{"STORE_DRIVER": "firestore", "TRIGGER_SECRET": "s", "TIMEZONE": "UTC"})
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_PROJECT_ID")

	setEnv(t, map[string]string{"STORE_DRIVER": "mongo", "TRIGGER_SECRET": "s", "TIMEZONE": "UTC"})
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(&Config{Env: "development", LogLevel: "debug"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	logger, err = NewLogger(&Config{Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = NewLogger(&Config{LogLevel: "loud"})
	assert.Error(t, err)
}
