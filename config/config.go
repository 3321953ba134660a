package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	History   HistoryConfig
	Suggest   SuggestConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds remote catalog API configuration
type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// PublicBaseURL is the address browsers load /uploads/ images from; defaults to BaseURL
	PublicBaseURL     string        `mapstructure:"public_base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	Debug             bool          `mapstructure:"debug"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// HistoryConfig holds recent-search history configuration
type HistoryConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// SuggestConfig holds search suggestion configuration
type SuggestConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from a .env file, environment variables and config files.
// configFile, when set, replaces the default config search paths.
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/loomhouse/")
	}

	// Environment variable settings: LOOMHOUSE_SERVER_PORT -> server.port
	v.SetEnvPrefix("LOOMHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Catalog.PublicBaseURL == "" {
		config.Catalog.PublicBaseURL = config.Catalog.BaseURL
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment are not overridden.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	// Catalog defaults
	v.SetDefault("catalog.base_url", "http://localhost:5000")
	v.SetDefault("catalog.public_base_url", "")
	v.SetDefault("catalog.timeout", "15s")
	v.SetDefault("catalog.requests_per_second", 50)
	v.SetDefault("catalog.burst", 20)
	v.SetDefault("catalog.max_attempts", 1)
	v.SetDefault("catalog.debug", false)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.prefix", "loomhouse:")
	v.SetDefault("cache.ttl", "5m")

	// History and suggestions
	v.SetDefault("history.ttl", "720h") // 30 days
	v.SetDefault("suggest.debounce", "300ms")
	v.SetDefault("suggest.cache_ttl", "1m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 300)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	u, err := url.Parse(config.Catalog.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("catalog base URL must be an absolute URL (set LOOMHOUSE_CATALOG_BASE_URL), got: %q", config.Catalog.BaseURL)
	}

	if config.Catalog.MaxAttempts < 1 {
		return fmt.Errorf("catalog max attempts must be at least 1, got: %d", config.Catalog.MaxAttempts)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit cannot be negative")
	}

	return nil
}
