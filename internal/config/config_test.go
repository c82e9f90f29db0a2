package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DBFileName)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "", cfg.TrustedSubnet)
	assert.NotEmpty(t, cfg.TokenSigningSecretKey)
}

func TestConfigEnvOverridesDefaults(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FILE_STORAGE_PATH", "tunebase_storage.json")
	t.Setenv("ACCESS_TOKEN_TTL", "2h")
	t.Setenv("TRUSTED_SUBNET", "10.0.0.0/8")
	t.Setenv("BCRYPT_COST", "6")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "tunebase_storage.json", cfg.DBFileName)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "10.0.0.0/8", cfg.TrustedSubnet)
	assert.Equal(t, 6, cfg.BcryptCost)
}

func TestConfigRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name     string
		envName  string
		envValue string
	}{
		{
			name:     "unknown log level",
			envName:  "LOG_LEVEL",
			envValue: "verbose",
		},
		{
			name:     "run address without a port",
			envName:  "SERVER_ADDRESS",
			envValue: "localhost",
		},
		{
			name:     "signing key is not base64url",
			envName:  "JWT_SECRET_KEY",
			envValue: "!!! not base64 !!!",
		},
		{
			name:     "trusted subnet is not a CIDR",
			envName:  "TRUSTED_SUBNET",
			envValue: "10.0.0.1",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.envName, testCase.envValue)

			_, err := New(WithDisableFlagsParsing(true))
			assert.Error(t, err)
		})
	}
}
