package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	DatabaseDriver       string
	DatabaseURL          string
	DatabaseMaxOpenConns int
	DatabaseMaxIdleConns int
	RedisURL             string
	NATSURL              string
	ActivityStream       string
	JWTSecret            string
	JWTTTL               time.Duration
	AnalyticsCacheTTL    time.Duration
	SearchNameLimit      int
	LoginRateLimit       int
	AdminUsername        string
	AdminPassword        string
	DashboardAPIBaseURL  string
	TrustedProxies       []string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDUQUERY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EduQuery API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "3000")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("activity.stream", "eduquery")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("analytics.cache_ttl", "5m")
	v.SetDefault("search.name_limit", 20)
	v.SetDefault("login.rate_limit", 10)
	v.SetDefault("trusted_proxies", "127.0.0.1,::1")

	jwtTTL, err := parseDuration(v.GetString("jwt.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("analytics.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid analytics cache ttl: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseDriver:       strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:          v.GetString("database.url"),
		DatabaseMaxOpenConns: v.GetInt("database.max_open_conns"),
		DatabaseMaxIdleConns: v.GetInt("database.max_idle_conns"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		ActivityStream:       v.GetString("activity.stream"),
		JWTSecret:            v.GetString("jwt.secret"),
		JWTTTL:               jwtTTL,
		AnalyticsCacheTTL:    cacheTTL,
		SearchNameLimit:      v.GetInt("search.name_limit"),
		LoginRateLimit:       v.GetInt("login.rate_limit"),
		AdminUsername:        strings.TrimSpace(v.GetString("admin.username")),
		AdminPassword:        v.GetString("admin.password"),
		DashboardAPIBaseURL:  strings.TrimRight(v.GetString("dashboard.api_base_url"), "/"),
		TrustedProxies:       splitList(v.GetString("trusted_proxies")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.SearchNameLimit <= 0 {
		cfg.SearchNameLimit = 20
	}

	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = 10
	}

	if cfg.DashboardAPIBaseURL == "" {
		cfg.DashboardAPIBaseURL = "http://127.0.0.1" + cfg.HTTPAddress()
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
