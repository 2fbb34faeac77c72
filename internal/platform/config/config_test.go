package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_PORT", "REDIS_ADDR", "REQUEST_TIMEOUT", "BCRYPT_COST", "MEDIA_URL", "DB_NAME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg := Load()

	require.Equal(t, "8080", cfg.APIPort)
	require.Equal(t, 60*time.Second, cfg.RequestTimeout)
	require.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	require.Equal(t, "/media/", cfg.MediaURL)
	require.Empty(t, cfg.RedisAddr)
	require.Contains(t, cfg.DBConnStr, "dbname=medportal")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("DB_NAME", "accounts")
	t.Setenv("TOKEN_CACHE_TTL", "120")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	require.Equal(t, "9090", cfg.APIPort)
	require.Equal(t, 2*time.Minute, cfg.TokenCacheTTL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, bcrypt.MinCost, cfg.BcryptCost)
	require.Equal(t, 3, cfg.RedisDB)
	require.Contains(t, cfg.DBConnStr, "dbname=accounts")
}

func TestLoadRejectsOutOfRangeCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")

	cfg := Load()

	require.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
}

func TestGetEnvAsDurationFallback(t *testing.T) {
	t.Setenv("SOME_DURATION", "not-a-duration")

	require.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
