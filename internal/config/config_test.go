package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MESSAGE_SHIFT", "")
	t.Setenv("APP_ENV", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 3, cfg.Chat.Shift)
	require.Equal(t, int64(5<<20), cfg.Chat.MaxImageBytes)
	require.Equal(t, time.Minute, cfg.Chat.MessageRateWindow)
	require.False(t, cfg.StorageEnabled())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("MESSAGE_SHIFT", "7")
	t.Setenv("APP_ENV", "production")
	t.Setenv("USER_CACHE_TTL", "30s")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("S3_BUCKET", "chat-images")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, 7, cfg.Chat.Shift)
	require.True(t, cfg.IsProduction())
	require.Equal(t, 30*time.Second, cfg.Chat.UserCacheTTL)
	require.True(t, cfg.StorageEnabled())
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	require.Equal(t, 10, getEnvAsInt("DB_MAX_CONNS", 10))
}
