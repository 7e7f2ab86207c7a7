package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig selects where routine, compare, favorites and scan state live
type StoreConfig struct {
	Type       string `mapstructure:"type"` // "memory", "redis" or "sqlite"
	RedisURL   string `mapstructure:"redis_url"`
	SQLitePath string `mapstructure:"sqlite_path"`
	KeyPrefix  string `mapstructure:"key_prefix"`
}

// CacheConfig holds recommendation cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type RecommendConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
}

// AnalyzerConfig configures the optional upstream skin analyzer.
// An empty BaseURL disables it.
type AnalyzerConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Enabled reports whether an analyzer endpoint is configured
func (a AnalyzerConfig) Enabled() bool {
	return strings.TrimSpace(a.BaseURL) != ""
}

// Load loads configuration from .env, config files and environment variables
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/skinlens/")

	// SKINLENS_STORE_REDIS_URL -> store.redis_url
	v.SetEnvPrefix("SKINLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment.
// Variables already set are left alone and a missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values. Every key gets a default so
// AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:*"})

	v.SetDefault("log.level", "info")

	v.SetDefault("store.type", "memory")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.sqlite_path", "data/skinlens.db")
	v.SetDefault("store.key_prefix", "skinlens")

	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("recommend.default_limit", 20)

	v.SetDefault("analyzer.base_url", "")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.timeout", "30s")
	v.SetDefault("analyzer.requests_per_second", 1)

	v.SetDefault("ratelimit.per_ip", 120)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Store.Type {
	case "memory":
	case "redis":
		if config.Store.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when store type is 'redis' (set SKINLENS_STORE_REDIS_URL)")
		}
	case "sqlite":
		if config.Store.SQLitePath == "" {
			return fmt.Errorf("SQLite path is required when store type is 'sqlite'")
		}
	default:
		return fmt.Errorf("store type must be 'memory', 'redis' or 'sqlite', got: %s", config.Store.Type)
	}

	if config.Recommend.DefaultLimit <= 0 {
		return fmt.Errorf("recommend.default_limit must be positive, got: %d", config.Recommend.DefaultLimit)
	}
	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got: %s", config.Cache.TTL)
	}
	if config.Analyzer.Enabled() && config.Analyzer.RequestsPerSecond <= 0 {
		return fmt.Errorf("analyzer.requests_per_second must be positive, got: %v", config.Analyzer.RequestsPerSecond)
	}

	return nil
}
