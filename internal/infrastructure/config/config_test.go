package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"PDC_APP_NAME":          os.Getenv("PDC_APP_NAME"),
		"PDC_APP_ENV":           os.Getenv("PDC_APP_ENV"),
		"PDC_APP_PORT":          os.Getenv("PDC_APP_PORT"),
		"PDC_DATABASE_HOST":     os.Getenv("PDC_DATABASE_HOST"),
		"PDC_DATABASE_PASSWORD": os.Getenv("PDC_DATABASE_PASSWORD"),
		"PDC_DATABASE_SSLMODE":  os.Getenv("PDC_DATABASE_SSLMODE"),
		"PDC_PDC_HOLDER_NAME":   os.Getenv("PDC_PDC_HOLDER_NAME"),
		"PDC_SCHEDULER_ENABLED": os.Getenv("PDC_SCHEDULER_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pdc-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "pdc", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, time.Hour, cfg.Scheduler.CheckInterval)
		assert.Equal(t, 200, cfg.Scheduler.BatchSize)
		assert.Equal(t, 7, cfg.PDC.DueWindowDays)
		assert.Equal(t, time.Minute, cfg.PDC.DashboardCacheTTL)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	})

	t.Run("env vars override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("PDC_APP_PORT", "9090")
		os.Setenv("PDC_DATABASE_HOST", "db.internal")
		os.Setenv("PDC_PDC_HOLDER_NAME", "Alpha Properties LLC")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "Alpha Properties LLC", cfg.PDC.HolderName)
	})

	t.Run("production requires a database password", func(t *testing.T) {
		clearEnv()
		os.Setenv("PDC_APP_ENV", "production")
		os.Setenv("PDC_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("PDC_APP_ENV", "production")
		os.Setenv("PDC_DATABASE_PASSWORD", "hunter2-but-longer")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "pdc",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
