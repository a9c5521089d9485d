package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	ArticleStoreBaseURL string        `mapstructure:"article_store_base_url"`
	StoreTimeoutSeconds int64         `mapstructure:"store_timeout_seconds"`
	StoreTimeout        time.Duration `mapstructure:"-"`

	GeminiAPIKey  string `mapstructure:"gemini_api_key"`
	GeminiModel   string `mapstructure:"gemini_model"`
	GeminiBaseURL string `mapstructure:"gemini_base_url"`

	SiteProfileFile string `mapstructure:"site_profile_file"`
	EventsFile      string `mapstructure:"events_file"`

	CooldownSeconds          int64         `mapstructure:"cooldown_seconds"`
	Cooldown                 time.Duration `mapstructure:"-"`
	NavigationTimeoutSeconds int64         `mapstructure:"navigation_timeout_seconds"`
	NavigationTimeout        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "article-refinery")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("article_store_base_url", "http://localhost/api")
	v.SetDefault("store_timeout_seconds", 10)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash-lite")
	v.SetDefault("gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("site_profile_file", "")
	v.SetDefault("events_file", "")
	v.SetDefault("cooldown_seconds", 5)
	v.SetDefault("navigation_timeout_seconds", 30)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/seeds.db")
	v.SetDefault("storage_ttl_seconds", int64((5*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ArticleStoreBaseURL == "" {
		return nil, fmt.Errorf("article_store_base_url must not be empty")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini_api_key must be set")
	}
	if cfg.StoreTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid store_timeout_seconds (must be positive seconds)")
	}
	if cfg.CooldownSeconds < 0 {
		return nil, fmt.Errorf("invalid cooldown_seconds (must not be negative)")
	}
	if cfg.NavigationTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid navigation_timeout_seconds (must be positive seconds)")
	}
	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}

	cfg.StoreTimeout = time.Duration(cfg.StoreTimeoutSeconds) * time.Second
	cfg.Cooldown = time.Duration(cfg.CooldownSeconds) * time.Second
	cfg.NavigationTimeout = time.Duration(cfg.NavigationTimeoutSeconds) * time.Second
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
