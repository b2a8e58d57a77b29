package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, []string{"http://127.0.0.1:3000"}, cfg.Server.AllowedOrigins)

	assert.Equal(t, "employment_api", cfg.Database.Name)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)

	assert.Equal(t, 120*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.Auth.BCryptCost)

	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Worker.Enabled)
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerMin)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("BCRYPT_COST", "12")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 12, cfg.Auth.BCryptCost)
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 120*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_PASSWORD", "pg-password")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")

	t.Setenv("JWT_SECRET", "rotated-production-secret")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_ProductionRequiresDBPassword(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_SECRET", "rotated-production-secret")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database password")
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host: "db", Port: "5433", User: "app", Password: "pw",
			Name: "employment_api", SSLMode: "require",
		},
	}
	assert.Equal(t,
		"host=db port=5433 user=app password=pw dbname=employment_api sslmode=require",
		cfg.GetDatabaseDSN())
}

func TestGetRedisAddr(t *testing.T) {
	cfg := &Config{Redis: RedisConfig{Host: "cache", Port: "6380"}}
	assert.Equal(t, "cache:6380", cfg.GetRedisAddr())
}

func TestGetServerAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: "8081"}}
	assert.Equal(t, "0.0.0.0:8081", cfg.GetServerAddr())
}
