package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Stats backends.
const (
	StatsBackendMemory   = "memory"
	StatsBackendRedis    = "redis"
	StatsBackendPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	HomePage        string        `mapstructure:"home_page"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type UpstreamConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type StatsConfig struct {
	Backend  string `mapstructure:"backend"`
	RedisKey string `mapstructure:"redis_key"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type AdminConfig struct {
	Username     string        `mapstructure:"username"`
	PasswordHash string        `mapstructure:"password_hash"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// Enabled reports whether admin login is configured.
func (a AdminConfig) Enabled() bool {
	return a.PasswordHash != "" && a.JWTSecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.home_page", "/dashboard")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("upstream.base_url", "https://api.escuelajs.co/api/v1/products")
	v.SetDefault("upstream.timeout", 15*time.Second)
	v.SetDefault("upstream.retries", 2)
	v.SetDefault("upstream.retry_delay", 2*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("stats.backend", StatsBackendMemory)
	v.SetDefault("stats.redis_key", "catalog:stats")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.url", "")

	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_ttl", 15*time.Minute)
}

// Load reads configuration from defaults, an optional config file and
// CATALOG_* environment variables, in increasing order of precedence.
// A .env file in the working directory is loaded into the environment first.
// When path is empty, config.yaml is looked up in the working directory.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "CATALOG_SERVER_PORT", "PORT"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("database.url", "CATALOG_DATABASE_URL", "DATABASE_URL"); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		errs = append(errs, errors.New("upstream.base_url is required"))
	}
	if c.Upstream.Retries < 0 {
		errs = append(errs, errors.New("upstream.retries cannot be negative"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Upstream.RetryDelay < 0 {
		errs = append(errs, errors.New("upstream.retry_delay cannot be negative"))
	}

	switch c.Stats.Backend {
	case StatsBackendMemory, StatsBackendRedis:
	case StatsBackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres stats backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown stats.backend %q", c.Stats.Backend))
	}

	return errors.Join(errs...)
}
