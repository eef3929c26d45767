package payglocal

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidateAPIKeyMode(t *testing.T) {
	cfg := Config{MerchantID: "M1", Env: EnvUAT, APIKey: "K1"}
	require.NoError(t, cfg.Validate())
}

func TestConfigValidateTokenPairMode(t *testing.T) {
	require.NoError(t, testTokenConfig().Validate())
}

func TestConfigValidateFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing merchant id", func(c *Config) { c.MerchantID = "" }, "MerchantID"},
		{"unknown environment", func(c *Config) { c.Env = "STAGING" }, "Env"},
		{"missing public key id", func(c *Config) { c.PublicKeyID = "" }, "PublicKeyID"},
		{"missing private key id", func(c *Config) { c.PrivateKeyID = "" }, "PrivateKeyID"},
		{"missing gateway public key", func(c *Config) { c.PayGlocalPublicKeyPEM = "" }, "PayGlocalPublicKeyPEM"},
		{"missing merchant private key", func(c *Config) { c.MerchantPrivateKeyPEM = "" }, "MerchantPrivateKeyPEM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testTokenConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestConfigAPIKeySkipsKeyPairChecks(t *testing.T) {
	cfg := Config{MerchantID: "M1", Env: EnvUAT, APIKey: "K1"}
	// No key-pair fields at all: still valid.
	require.NoError(t, cfg.Validate())
}

func TestConfigDefaultBaseURL(t *testing.T) {
	assert.Equal(t, "https://api.uat.payglocal.in", Config{Env: EnvUAT}.DefaultBaseURL())
	assert.Equal(t, "https://api.payglocal.in", Config{Env: EnvProduction}.DefaultBaseURL())

	// Case-insensitive environments.
	assert.Equal(t, "https://api.payglocal.in", Config{Env: "prod"}.DefaultBaseURL())
	assert.Equal(t, "https://api.uat.payglocal.in", Config{Env: "uat"}.DefaultBaseURL())

	// Override wins, trailing slash trimmed.
	assert.Equal(t, "http://localhost:9000", Config{Env: EnvUAT, BaseURL: "http://localhost:9000/"}.DefaultBaseURL())
}

func TestConfigTokenExpirationDefault(t *testing.T) {
	assert.Equal(t, int64(300000), Config{}.tokenExpiration())
	assert.Equal(t, int64(60000), Config{TokenExpirationMillis: 60000}.tokenExpiration())
}

func TestConfigSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, Config{}.slogLevel())
	assert.Equal(t, slog.LevelError, Config{LogLevel: "error"}.slogLevel())
	assert.Equal(t, slog.LevelWarn, Config{LogLevel: "WARN"}.slogLevel())
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "debug"}.slogLevel())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PG_MERCHANT_ID", "M9")
	t.Setenv("PG_ENV", "prod")
	t.Setenv("PG_API_KEY", "K9")
	t.Setenv("PG_LOG_LEVEL", "debug")
	t.Setenv("PG_TOKEN_EXPIRATION_MS", "120000")
	t.Setenv("PG_BASE_URL", "")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "M9", cfg.MerchantID)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, "K9", cfg.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(120000), cfg.TokenExpirationMillis)
}
