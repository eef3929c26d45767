package payglocal

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment represents the PayGlocal environment (UAT or production).
type Environment string

const (
	EnvUAT        Environment = "UAT"
	EnvProduction Environment = "PROD"
)

// defaultTokenExpirationMillis is the lifetime of generated JWE/JWS tokens
// when Config.TokenExpirationMillis is not set.
const defaultTokenExpirationMillis = 300000

// Config holds the credentials and settings needed to interact with
// the PayGlocal payment gateway API.
//
// Authentication works in one of two modes: when APIKey is set, requests
// carry the key in the x-gl-auth header with plain JSON bodies; otherwise
// the four key-pair fields must all be present and every request carries a
// JWE-encrypted body (or a signed endpoint path for GETs) plus a JWS in
// the x-gl-token-external header.
type Config struct {
	// MerchantID is the PayGlocal merchant identifier (MID).
	MerchantID string

	// Env selects UAT or production endpoints. Case-insensitive.
	Env Environment

	// APIKey enables API-key authentication when non-empty.
	APIKey string

	// PublicKeyID is the key id (kid) of the PayGlocal public key,
	// embedded in the JWE header.
	PublicKeyID string

	// PrivateKeyID is the key id (kid) of the merchant private key,
	// embedded in the JWS header.
	PrivateKeyID string

	// PayGlocalPublicKeyPEM is the PEM-encoded (SPKI) PayGlocal public
	// key used to encrypt request payloads.
	PayGlocalPublicKeyPEM string

	// MerchantPrivateKeyPEM is the PEM-encoded (PKCS#8) merchant private
	// key used to sign request digests.
	MerchantPrivateKeyPEM string

	// LogLevel is one of "error", "warn", "info", "debug". Empty means "info".
	LogLevel string

	// TokenExpirationMillis is the token lifetime in milliseconds.
	// Zero means the 5-minute default.
	TokenExpirationMillis int64

	// BaseURL optionally overrides the API endpoint base URL.
	// When empty, the URL is derived from Env.
	BaseURL string
}

// Validate checks that the required configuration fields are present.
func (c Config) Validate() error {
	if c.MerchantID == "" {
		return &ConfigError{Field: "MerchantID", Reason: "is required"}
	}
	switch normalizeEnv(c.Env) {
	case EnvUAT, EnvProduction:
	default:
		if c.BaseURL == "" {
			return &ConfigError{Field: "Env", Reason: fmt.Sprintf("unknown environment %q, want UAT or PROD", string(c.Env))}
		}
	}
	if c.APIKey != "" {
		return nil
	}
	// Token-pair mode: all four key fields are mandatory.
	if c.PublicKeyID == "" {
		return &ConfigError{Field: "PublicKeyID", Reason: "is required when APIKey is not set"}
	}
	if c.PrivateKeyID == "" {
		return &ConfigError{Field: "PrivateKeyID", Reason: "is required when APIKey is not set"}
	}
	if c.PayGlocalPublicKeyPEM == "" {
		return &ConfigError{Field: "PayGlocalPublicKeyPEM", Reason: "is required when APIKey is not set"}
	}
	if c.MerchantPrivateKeyPEM == "" {
		return &ConfigError{Field: "MerchantPrivateKeyPEM", Reason: "is required when APIKey is not set"}
	}
	return nil
}

// DefaultBaseURL returns the API base URL for the configured environment.
func (c Config) DefaultBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if normalizeEnv(c.Env) == EnvProduction {
		return "https://api.payglocal.in"
	}
	return "https://api.uat.payglocal.in"
}

// tokenExpiration returns the configured token lifetime in milliseconds.
func (c Config) tokenExpiration() int64 {
	if c.TokenExpirationMillis > 0 {
		return c.TokenExpirationMillis
	}
	return defaultTokenExpirationMillis
}

// slogLevel maps the configured log level to a slog level.
func (c Config) slogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "error":
		return slog.LevelError
	case "warn":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func normalizeEnv(env Environment) Environment {
	switch strings.ToUpper(string(env)) {
	case "UAT":
		return EnvUAT
	case "PROD", "PRODUCTION":
		return EnvProduction
	}
	return env
}

// LoadConfigFromEnv creates a Config from environment variables:
//
//	PG_MERCHANT_ID          – merchant identifier (required)
//	PG_ENV                  – "UAT" (default) or "PROD"
//	PG_API_KEY              – API key (enables x-gl-auth mode)
//	PG_PUBLIC_KEY_ID        – PayGlocal public key id
//	PG_PRIVATE_KEY_ID       – merchant private key id
//	PG_PAYGLOCAL_PUBLIC_KEY – PEM PayGlocal public key
//	PG_MERCHANT_PRIVATE_KEY – PEM merchant private key
//	PG_LOG_LEVEL            – error|warn|info|debug
//	PG_TOKEN_EXPIRATION_MS  – token lifetime in milliseconds
//	PG_BASE_URL             – optional endpoint override
func LoadConfigFromEnv() Config {
	return configFromEnv()
}

// LoadConfigFromDotEnv loads environment variables from a .env file and then
// reads the Config from them. If the file does not exist it silently falls
// back to the current process environment.
func LoadConfigFromDotEnv(filenames ...string) Config {
	// godotenv.Load does NOT override existing env vars.
	_ = godotenv.Load(filenames...)
	return configFromEnv()
}

func configFromEnv() Config {
	env := EnvUAT
	if normalizeEnv(Environment(os.Getenv("PG_ENV"))) == EnvProduction {
		env = EnvProduction
	}

	expiration, _ := strconv.ParseInt(os.Getenv("PG_TOKEN_EXPIRATION_MS"), 10, 64)

	return Config{
		MerchantID:            os.Getenv("PG_MERCHANT_ID"),
		Env:                   env,
		APIKey:                os.Getenv("PG_API_KEY"),
		PublicKeyID:           os.Getenv("PG_PUBLIC_KEY_ID"),
		PrivateKeyID:          os.Getenv("PG_PRIVATE_KEY_ID"),
		PayGlocalPublicKeyPEM: os.Getenv("PG_PAYGLOCAL_PUBLIC_KEY"),
		MerchantPrivateKeyPEM: os.Getenv("PG_MERCHANT_PRIVATE_KEY"),
		LogLevel:              os.Getenv("PG_LOG_LEVEL"),
		TokenExpirationMillis: expiration,
		BaseURL:               os.Getenv("PG_BASE_URL"),
	}
}
