package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is the placeholder secret used when none is configured.
const DefaultJWTSecret = "change-me-in-production"

var ErrInsecureJWTSecret = errors.New("jwt.secret must be set in production")

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Sentry    SentryConfig
	Jobs      JobsConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type StorageConfig struct {
	Provider string // memory, redis or postgres
	Seed     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
	JWKSURL    string
	Issuer     string
}

type RateLimitConfig struct {
	WritePerMin int
	JobsPerHour int
}

type SentryConfig struct {
	DSN string
}

type JobsConfig struct {
	Enabled     bool
	Concurrency int
}

// ExportConfig points at an S3-compatible bucket for finished pitch tables
type ExportConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

// Enabled reports whether pitch tables are published to object storage.
func (e ExportConfig) Enabled() bool {
	return e.Bucket != "" && e.AccessKeyID != "" && e.SecretAccessKey != ""
}

// RedisRequired reports whether any enabled component needs a Redis connection.
func (c *Config) RedisRequired() bool {
	return c.Storage.Provider == "redis" || c.Jobs.Enabled
}

// IsProduction reports whether server.env is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Validate rejects settings that are only acceptable outside production.
func (c *Config) Validate() error {
	if c.IsProduction() && (c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables: STORAGE_PROVIDER overrides storage.provider
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.env", "development")
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.seed", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("jwt.secret", DefaultJWTSecret)
	v.SetDefault("jwt.expiration", 24)
	v.SetDefault("jwt.jwks_url", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("ratelimit.write_per_min", 60)
	v.SetDefault("ratelimit.jobs_per_hour", 30)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("jobs.enabled", false)
	v.SetDefault("jobs.concurrency", 4)
	v.SetDefault("export.endpoint", "")
	v.SetDefault("export.region", "auto")
	v.SetDefault("export.access_key_id", "")
	v.SetDefault("export.secret_access_key", "")
	v.SetDefault("export.bucket", "")
	v.SetDefault("export.public_url", "")

	// Try to read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
			Env:  v.GetString("server.env"),
		},
		Storage: StorageConfig{
			Provider: strings.ToLower(v.GetString("storage.provider")),
			Seed:     v.GetBool("storage.seed"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Postgres: PostgresConfig{
			DSN: v.GetString("postgres.dsn"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetInt("jwt.expiration"),
			JWKSURL:    v.GetString("jwt.jwks_url"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		RateLimit: RateLimitConfig{
			WritePerMin: v.GetInt("ratelimit.write_per_min"),
			JobsPerHour: v.GetInt("ratelimit.jobs_per_hour"),
		},
		Sentry: SentryConfig{
			DSN: v.GetString("sentry.dsn"),
		},
		Jobs: JobsConfig{
			Enabled:     v.GetBool("jobs.enabled"),
			Concurrency: v.GetInt("jobs.concurrency"),
		},
		Export: ExportConfig{
			Endpoint:        v.GetString("export.endpoint"),
			Region:          v.GetString("export.region"),
			AccessKeyID:     v.GetString("export.access_key_id"),
			SecretAccessKey: v.GetString("export.secret_access_key"),
			Bucket:          v.GetString("export.bucket"),
			PublicURL:       v.GetString("export.public_url"),
		},
	}

	return cfg, nil
}
