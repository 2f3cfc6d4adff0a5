package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultGraphBase = "https://graph.threads.net"
	defaultAuthBase  = "https://www.threads.net"
	defaultScopes    = "threads_basic,threads_content_publish,threads_delete,threads_read_replies,threads_manage_replies,threads_manage_insights"
)

// Config holds all application configuration.
type Config struct {
	AppEnv string `yaml:"app_env"`

	// Database
	DatabasePath string `yaml:"database_path"`

	// HTTP API
	HTTPAddr    string   `yaml:"http_addr"`
	FrontendURL string   `yaml:"frontend_url"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Threads API and OAuth
	ThreadsGraphBase    string        `yaml:"threads_graph_base"`
	ThreadsAuthBase     string        `yaml:"threads_auth_base"`
	ThreadsClientID     string        `yaml:"threads_client_id"`
	ThreadsClientSecret string        `yaml:"threads_client_secret"`
	ThreadsRedirectURI  string        `yaml:"threads_redirect_uri"`
	ThreadsScopes       string        `yaml:"threads_scopes"`
	ThreadsHTTPTimeout  time.Duration `yaml:"threads_http_timeout"`

	// Insights refresh job; zero interval disables it.
	InsightsInterval time.Duration `yaml:"insights_interval"`
	InsightsBatch    int           `yaml:"insights_batch"`

	// Notifications
	NotifyWebhookURL string `yaml:"notify_webhook_url"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		AppEnv:             "local",
		DatabasePath:       "data/threados.db",
		HTTPAddr:           ":8000",
		FrontendURL:        "http://localhost:5173",
		CORSOrigins:        []string{"http://localhost:5173", "http://localhost:3000"},
		ThreadsGraphBase:   defaultGraphBase,
		ThreadsAuthBase:    defaultAuthBase,
		ThreadsRedirectURI: "http://localhost:8000/auth/threads/callback",
		ThreadsScopes:      defaultScopes,
		ThreadsHTTPTimeout: 30 * time.Second,
		InsightsInterval:   6 * time.Hour,
		InsightsBatch:      20,
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by THREADOS_CONFIG, and environment variables, in that order.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("THREADOS_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.FrontendURL = strings.TrimRight(getEnv("FRONTEND_URL", cfg.FrontendURL), "/")
	cfg.ThreadsGraphBase = strings.TrimRight(getEnv("THREADS_GRAPH_BASE", cfg.ThreadsGraphBase), "/")
	cfg.ThreadsAuthBase = strings.TrimRight(getEnv("THREADS_AUTH_BASE", cfg.ThreadsAuthBase), "/")
	cfg.ThreadsClientID = getEnv("THREADS_CLIENT_ID", cfg.ThreadsClientID)
	cfg.ThreadsClientSecret = getEnv("THREADS_CLIENT_SECRET", cfg.ThreadsClientSecret)
	cfg.ThreadsRedirectURI = getEnv("THREADS_REDIRECT_URI", cfg.ThreadsRedirectURI)
	cfg.ThreadsScopes = getEnv("THREADS_SCOPES", cfg.ThreadsScopes)
	cfg.NotifyWebhookURL = getEnv("NOTIFY_WEBHOOK_URL", cfg.NotifyWebhookURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	var err error
	if v := os.Getenv("THREADS_HTTP_TIMEOUT"); v != "" {
		cfg.ThreadsHTTPTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid THREADS_HTTP_TIMEOUT: %w", err)
		}
	}

	if v := os.Getenv("INSIGHTS_INTERVAL"); v != "" {
		cfg.InsightsInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid INSIGHTS_INTERVAL: %w", err)
		}
	}

	if v := os.Getenv("INSIGHTS_BATCH"); v != "" {
		cfg.InsightsBatch, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid INSIGHTS_BATCH: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Scopes returns the configured OAuth scopes as a list.
func (c *Config) Scopes() []string {
	return splitList(c.ThreadsScopes)
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.ThreadsGraphBase == "" {
		return fmt.Errorf("THREADS_GRAPH_BASE is required")
	}
	if c.InsightsBatch < 0 {
		return fmt.Errorf("INSIGHTS_BATCH must not be negative")
	}
	return nil
}

// ValidateForOAuth checks configuration needed to connect an account.
func (c *Config) ValidateForOAuth() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ThreadsClientID == "" {
		return fmt.Errorf("THREADS_CLIENT_ID is required for OAuth")
	}
	if c.ThreadsClientSecret == "" {
		return fmt.Errorf("THREADS_CLIENT_SECRET is required for OAuth")
	}
	if c.ThreadsRedirectURI == "" {
		return fmt.Errorf("THREADS_REDIRECT_URI is required for OAuth")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForOAuth(); err != nil {
		return err
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.InsightsInterval < 0 {
		return fmt.Errorf("INSIGHTS_INTERVAL must not be negative")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
