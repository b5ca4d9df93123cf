package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/txledger/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration derived from environment variables.
type Config struct {
	HTTPPort        string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	RateLimitRPS    int
	IdempotencyTTL  time.Duration
	MaxUploadBytes  int64
	OutputPrecision int32
}

// AuthEnabled reports whether the replay API requires bearer tokens.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// Load reads environment variables using viper and returns a typed config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	bindEnv(v, "port", "PORT", "TXLEDGER_PORT")
	bindEnv(v, "log_level", "LOG_LEVEL", "TXLEDGER_LOG_LEVEL")
	bindEnv(v, "database_url", "DATABASE_URL", "TXLEDGER_DATABASE_URL")
	bindEnv(v, "redis_url", "REDIS_URL", "TXLEDGER_REDIS_URL")
	bindEnv(v, "jwt_secret", "JWT_SECRET", "TXLEDGER_JWT_SECRET")
	bindEnv(v, "jwt_issuer", "JWT_ISSUER", "TXLEDGER_JWT_ISSUER")
	bindEnv(v, "jwt_audience", "JWT_AUDIENCE", "TXLEDGER_JWT_AUDIENCE")
	bindEnv(v, "rate_limit_rps", "RATE_LIMIT_RPS", "TXLEDGER_RATE_LIMIT_RPS")
	bindEnv(v, "idempotency_ttl", "IDEMPOTENCY_TTL", "TXLEDGER_IDEMPOTENCY_TTL")
	bindEnv(v, "max_upload_bytes", "MAX_UPLOAD_BYTES", "TXLEDGER_MAX_UPLOAD_BYTES")
	bindEnv(v, "output_precision", "OUTPUT_PRECISION", "TXLEDGER_OUTPUT_PRECISION")

	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "txledger")
	v.SetDefault("jwt_audience", "txledger-api")
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("idempotency_ttl", "24h")
	v.SetDefault("max_upload_bytes", 32<<20)
	v.SetDefault("output_precision", int(domain.DefaultPrecision))

	ttl, err := time.ParseDuration(v.GetString("idempotency_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid IDEMPOTENCY_TTL: %w", err)
	}

	precision := v.GetInt("output_precision")
	if precision < 0 || precision > 18 {
		return nil, fmt.Errorf("OUTPUT_PRECISION must be between 0 and 18, got %d", precision)
	}

	maxUpload := v.GetInt64("max_upload_bytes")
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}

	cfg := &Config{
		HTTPPort:        v.GetString("port"),
		LogLevel:        v.GetString("log_level"),
		DatabaseURL:     v.GetString("database_url"),
		RedisURL:        v.GetString("redis_url"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTIssuer:       v.GetString("jwt_issuer"),
		JWTAudience:     v.GetString("jwt_audience"),
		RateLimitRPS:    max(v.GetInt("rate_limit_rps"), 1),
		IdempotencyTTL:  ttl,
		MaxUploadBytes:  maxUpload,
		OutputPrecision: int32(precision),
	}

	if cfg.AuthEnabled() && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

func bindEnv(v *viper.Viper, key string, names ...string) {
	args := append([]string{key}, names...)
	_ = v.BindEnv(args...)
}
