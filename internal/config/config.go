package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	NewsProvider          string        `mapstructure:"news_provider"`
	NewsAPIURL            string        `mapstructure:"news_api_url"`
	NewsAPIKey            string        `mapstructure:"news_api_key"`
	ProvidersFile         string        `mapstructure:"providers_file"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	DefaultCountry     string        `mapstructure:"default_country"`
	SearchDebounceMs   int64         `mapstructure:"search_debounce_ms"`
	SearchDebounce     time.Duration `mapstructure:"-"`
	SessionIdleSeconds int64         `mapstructure:"session_idle_seconds"`
	SessionIdle        time.Duration `mapstructure:"-"`

	PublishersFile        string        `mapstructure:"publishers_file"`
	DigestIntervalSeconds int64         `mapstructure:"digest_interval"`
	DigestInterval        time.Duration `mapstructure:"-"`
	DigestCountriesRaw    string        `mapstructure:"digest_countries"`
	DigestCountries       []string      `mapstructure:"-"`
	EnrichDelayMs         int64         `mapstructure:"enrich_delay_ms"`
	EnrichDelay           time.Duration `mapstructure:"-"`

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

	v.SetDefault("app_name", "newsie")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("news_provider", "newsapi")
	v.SetDefault("news_api_url", "")
	v.SetDefault("news_api_key", "")
	v.SetDefault("providers_file", "")
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("default_country", "us")
	v.SetDefault("search_debounce_ms", 300)
	v.SetDefault("session_idle_seconds", int64((30*time.Minute)/time.Second))
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("digest_interval", 900) // seconds
	v.SetDefault("digest_countries", "us")
	v.SetDefault("enrich_delay_ms", 500)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/digest.db")
	v.SetDefault("storage_ttl_seconds", int64((3*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((6*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finalize validates raw values and derives durations and lists.
func (cfg *Config) finalize() error {
	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.SearchDebounceMs < 0 {
		return fmt.Errorf("invalid search_debounce_ms (must not be negative)")
	}
	cfg.SearchDebounce = time.Duration(cfg.SearchDebounceMs) * time.Millisecond

	if cfg.SessionIdleSeconds <= 0 {
		return fmt.Errorf("invalid session_idle_seconds (must be positive seconds)")
	}
	cfg.SessionIdle = time.Duration(cfg.SessionIdleSeconds) * time.Second

	if cfg.DigestIntervalSeconds <= 0 {
		return fmt.Errorf("invalid digest_interval (must be positive seconds)")
	}
	cfg.DigestInterval = time.Duration(cfg.DigestIntervalSeconds) * time.Second
	cfg.DigestCountries = splitList(cfg.DigestCountriesRaw)

	if cfg.EnrichDelayMs < 0 {
		return fmt.Errorf("invalid enrich_delay_ms (must not be negative)")
	}
	cfg.EnrichDelay = time.Duration(cfg.EnrichDelayMs) * time.Millisecond

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	cfg.NewsProvider = strings.ToLower(strings.TrimSpace(cfg.NewsProvider))
	cfg.DefaultCountry = strings.ToLower(strings.TrimSpace(cfg.DefaultCountry))
	return nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
