package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "stocksync-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "stocksync", cfg.Database.DBName)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.ShopifyMinInterval)
	assert.Equal(t, 15*time.Minute, cfg.Sync.PreviewTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestValidate_ConnectionPool(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxIdleConns = cfg.Database.MaxOpenConns + 1

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.password")

	cfg.Database.Password = "s3cret"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sslmode")

	cfg.Database.SSLMode = "require"
	cfg.HTTP.CORSAllowOrigins = []string{"*"}
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cors_allow_origins")

	cfg.HTTP.CORSAllowOrigins = []string{"https://app.example.com"}
	assert.NoError(t, cfg.validate())
}

func TestDSN_EscapesCredentials(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "sync_user",
		Password: "p@ss:word/1",
		DBName:   "stocksync",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss:word/1")
}
