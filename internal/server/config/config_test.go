package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, ":8080", cfg.EndpointAddrHTTP)
	require.NotEmpty(t, cfg.DatabaseDSN)
	require.Empty(t, cfg.SecretKey)
	require.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	require.Equal(t, 10*time.Minute, cfg.SetupTokenValidityDuration)
	require.Equal(t, 5*time.Minute, cfg.PendingTokenValidityDuration)
	require.Equal(t, 15*time.Minute, cfg.ResetTokenValidityDuration)
	require.Equal(t, 30*24*time.Hour, cfg.RefreshTokenValidityDuration)
	require.Equal(t, "LostGates", cfg.TOTPIssuer)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadConfig_SecretFromEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "env-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.SecretKey)
}
