package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "STORAGE_DRIVER", "STORAGE_DIR", "DATABASE_URL", "TOKEN_TTL", "AUTH_DELAY", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file", cfg.StorageDriver)
	assert.Equal(t, "./data", cfg.StorageDir)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.Second, cfg.AuthDelay)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("AUTH_DELAY", "250ms")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, 250*time.Millisecond, cfg.AuthDelay)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestFromEnv_Errors(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "sqlite")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "unknown STORAGE_DRIVER")
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "memory")
		t.Setenv("TOKEN_TTL", "forever")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "invalid TOKEN_TTL")
	})
}
