package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Gemini      GenerationConfig `mapstructure:"gemini"`
	OpenRouter  GenerationConfig `mapstructure:"openrouter"`
	AI          AIConfig         `mapstructure:"ai"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Store       StoreConfig      `mapstructure:"store"`
	Importer    ImporterConfig   `mapstructure:"importer"`
	Admin       AdminConfig      `mapstructure:"admin"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
}

// AppConfig application settings
type AppConfig struct {
	ID      string `mapstructure:"id"` // scopes collections under artifacts/{id}/public/data
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
	LogDir  string `mapstructure:"log_dir"`
	LogMode string `mapstructure:"log_mode"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// GenerationConfig text generation provider settings
type GenerationConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AIConfig suggestion service settings
type AIConfig struct {
	Provider      string `mapstructure:"provider"` // gemini | openrouter
	EnableCache   bool   `mapstructure:"enable_cache"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
}

// Generation returns the section of the selected provider
func (c *Config) Generation() GenerationConfig {
	if c.AI.Provider == "openrouter" {
		return c.OpenRouter
	}
	return c.Gemini
}

// CacheConfig suggestion cache settings
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig shared by the redis cache and the redis store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig document store settings
type StoreConfig struct {
	Backend string    `mapstructure:"backend"` // memory | redis | sql
	SQL     SQLConfig `mapstructure:"sql"`
}

// SQLConfig GORM backend settings
type SQLConfig struct {
	Driver string `mapstructure:"driver"` // postgres | sqlite
	DSN    string `mapstructure:"dsn"`
}

// ImporterConfig product import settings
type ImporterConfig struct {
	Source     string        `mapstructure:"source"` // simulated | shopify
	APIVersion string        `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// AdminConfig admin route protection
type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// RateLimitConfig rate limit settings
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig loads configuration from ./.env and the environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".")
}

// LoadConfigFrom loads configuration from dir/.env and the environment
func LoadConfigFrom(dir string) (*Config, error) {
	envFile := filepath.Join(dir, ".env")
	// .env is optional, the environment alone is enough
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("gemini.enabled", "GEMINI_ENABLED")
	v.BindEnv("openrouter.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("openrouter.model", "OPENROUTER_MODEL")
	v.BindEnv("openrouter.enabled", "OPENROUTER_ENABLED")
	v.BindEnv("ai.provider", "AI_PROVIDER")
	v.BindEnv("app.id", "APP_ID")
	v.BindEnv("store.backend", "STORE_BACKEND")
	v.BindEnv("store.sql.driver", "STORE_SQL_DRIVER")
	v.BindEnv("store.sql.dsn", "DATABASE_URL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("cache.enabled", "CACHE_ENABLED")
	v.BindEnv("cache.backend", "CACHE_BACKEND")
	v.BindEnv("importer.source", "IMPORT_SOURCE")
	v.BindEnv("admin.token", "ADMIN_TOKEN")
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("dedup_window", "DEDUP_WINDOW")
	v.BindEnv("log_level", "LOG_LEVEL")
	v.BindEnv("app.log_mode", "LOG_MODE")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Server.AllowedOrigins = splitList(config.Server.AllowedOrigins)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey shows only the first and last four characters
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// env values arrive as a single comma separated string
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "skincare-advisor")
	v.SetDefault("app.log_dir", "")
	v.SetDefault("app.log_mode", "")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("gemini.enabled", false)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.max_tokens", 512)
	v.SetDefault("gemini.temperature", 0.4)
	v.SetDefault("gemini.timeout", "30s")

	v.SetDefault("openrouter.enabled", false)
	v.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.max_tokens", 512)
	v.SetDefault("openrouter.temperature", 0.4)
	v.SetDefault("openrouter.timeout", "30s")

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.enable_cache", true)
	v.SetDefault("ai.max_concurrent", 5)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.sql.driver", "sqlite")
	v.SetDefault("store.sql.dsn", "file:advisor.db?cache=shared")

	v.SetDefault("importer.source", "simulated")
	v.SetDefault("importer.api_version", "2024-01")
	v.SetDefault("importer.timeout", "30s")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.App.ID) == "" {
		return fmt.Errorf("app id is required")
	}
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout")
	}

	switch config.AI.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unknown ai provider %q", config.AI.Provider)
	}
	if gen := config.Generation(); gen.Enabled {
		if gen.APIKey == "" {
			return fmt.Errorf("%s api key is required when %s is enabled", config.AI.Provider, config.AI.Provider)
		}
		if gen.Model == "" {
			return fmt.Errorf("%s model is required", config.AI.Provider)
		}
		if gen.Timeout <= 0 {
			return fmt.Errorf("invalid %s timeout", config.AI.Provider)
		}
	}
	if config.AI.MaxConcurrent <= 0 {
		return fmt.Errorf("invalid ai max concurrent")
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Redis.Addr == "" {
				return fmt.Errorf("redis addr is required for the redis cache")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	switch config.Store.Backend {
	case "memory":
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for the redis store")
		}
	case "sql":
		if config.Store.SQL.Driver != "postgres" && config.Store.SQL.Driver != "sqlite" {
			return fmt.Errorf("unknown sql driver %q", config.Store.SQL.Driver)
		}
		if config.Store.SQL.DSN == "" {
			return fmt.Errorf("sql dsn is required")
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	switch config.Importer.Source {
	case "simulated", "shopify":
	default:
		return fmt.Errorf("unknown import source %q", config.Importer.Source)
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
	}

	return nil
}
