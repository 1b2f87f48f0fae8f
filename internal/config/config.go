package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ignite/newsletter/internal/pkg/secret"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Postmark    PostmarkConfig    `yaml:"postmark"`
	Application ApplicationConfig `yaml:"application"`
	Redis       RedisConfig       `yaml:"redis"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// PostmarkConfig holds the email delivery provider settings.
type PostmarkConfig struct {
	BaseURL        string `yaml:"base_url"`
	SenderEmail    string `yaml:"sender_email"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the dispatch timeout as a duration.
func (p PostmarkConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Token wraps the API token so it cannot leak through logging or formatting.
func (p PostmarkConfig) Token() secret.Secret {
	return secret.New(p.APIToken)
}

// ApplicationConfig holds settings that shape outbound content.
type ApplicationConfig struct {
	// PublicBaseURL is the externally reachable base used in confirmation
	// links, not the bind address.
	PublicBaseURL string `yaml:"public_base_url"`
}

// RedisConfig holds optional rate limiting settings. An empty Addr disables
// the limiter entirely.
type RedisConfig struct {
	Addr                   string `yaml:"addr"`
	SubscribeLimit         int    `yaml:"subscribe_limit"`
	SubscribeWindowSeconds int    `yaml:"subscribe_window_seconds"`
}

// SubscribeWindow returns the rate limit window as a duration.
func (r RedisConfig) SubscribeWindow() time.Duration {
	return time.Duration(r.SubscribeWindowSeconds) * time.Second
}

// Load reads configuration from a YAML file, applying defaults for anything
// left unset.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 8000,
			Host: "0.0.0.0",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    3,
			ConnMaxLifetime: 5,
		},
		Postmark: PostmarkConfig{
			BaseURL:        "https://api.postmarkapp.com",
			TimeoutSeconds: 10,
		},
		Redis: RedisConfig{
			SubscribeLimit:         10,
			SubscribeWindowSeconds: 60,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads the YAML file and then applies environment overrides. A
// .env file in the working directory is honored when present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("POSTMARK_API_TOKEN"); v != "" {
		cfg.Postmark.APIToken = v
	}
	if v := os.Getenv("POSTMARK_SENDER_EMAIL"); v != "" {
		cfg.Postmark.SenderEmail = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Application.PublicBaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.Postmark.SenderEmail == "" {
		return fmt.Errorf("postmark sender email is required")
	}
	if c.Postmark.APIToken == "" {
		return fmt.Errorf("postmark api token is required")
	}
	if c.Application.PublicBaseURL == "" {
		return fmt.Errorf("application public base url is required")
	}
	return nil
}
