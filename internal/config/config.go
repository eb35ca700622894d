package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Session    SessionConfig    `mapstructure:"session"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	RequestLog RequestLogConfig `mapstructure:"request_log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Environment  string        `mapstructure:"environment"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Empty Host keeps sessions in process memory
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Empty DSN disables request logging, analytics and admin auth
type DatabaseConfig struct {
	DSN                string        `mapstructure:"dsn"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

type SessionConfig struct {
	TTL    time.Duration `mapstructure:"ttl"`
	Header string        `mapstructure:"header"`
}

type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Algorithm         string `mapstructure:"algorithm"` // "fixed_window" "token_bucket" "sliding_window"
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type RequestLogConfig struct {
	BufferSize    int `mapstructure:"buffer_size"`
	RetentionDays int `mapstructure:"retention_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.header", "X-Session-ID")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.algorithm", "fixed_window")
	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry_hours", 24)
	v.SetDefault("log.level", "info")
	v.SetDefault("request_log.buffer_size", 1000)
	v.SetDefault("request_log.retention_days", 30)
}

// Load reads path (json or yaml) when it exists, then applies CALC_*
// environment overrides, e.g. CALC_REDIS_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}
	if c.Session.Header == "" {
		return errors.New("session.header is required")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("ratelimit.requests_per_minute must be positive when rate limiting is enabled")
	}
	if c.Database.Enabled() && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when database.dsn is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
