package config

import (
	"os"
	"strconv"
	"time"

	"medivault/internal/credential"
	"medivault/internal/retention"
)

// Config captures process-level configuration. Secrets (the encryption key,
// the JWT signing key) arrive once at startup from the environment and are
// never written back out.
type Config struct {
	Addr string

	// PostgresURL enables the SQL-backed stores when set; empty keeps the
	// in-memory stores.
	PostgresURL string

	// RedisURL enables the Redis consent-session store when set.
	RedisURL string

	// EncryptionKey is the base64-encoded 32-byte symmetric key for the
	// field codec.
	EncryptionKey string

	// JWTSigningKey signs session tokens.
	JWTSigningKey string

	// BcryptCost is the credential hashing work factor. Changing it only
	// affects newly stored hashes.
	BcryptCost int

	// RetentionWarnDays is the advisory window for the expiring-soon
	// classification.
	RetentionWarnDays int

	// SessionTTL bounds session tokens and consent-state lifetimes.
	SessionTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:              getEnv("MEDIVAULT_ADDR", ":8080"),
		PostgresURL:       os.Getenv("MEDIVAULT_POSTGRES_URL"),
		RedisURL:          os.Getenv("MEDIVAULT_REDIS_URL"),
		EncryptionKey:     os.Getenv("MEDIVAULT_ENCRYPTION_KEY"),
		JWTSigningKey:     getEnv("MEDIVAULT_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		BcryptCost:        getEnvInt("MEDIVAULT_BCRYPT_COST", credential.DefaultCost),
		RetentionWarnDays: getEnvInt("MEDIVAULT_RETENTION_WARN_DAYS", retention.DefaultWarnWindowDays),
		SessionTTL:        getEnvDuration("MEDIVAULT_SESSION_TTL", 12*time.Hour),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
