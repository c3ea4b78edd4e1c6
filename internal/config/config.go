package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Sources  SourcesConfig  `yaml:"sources"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig configures bearer-token verification. The service only consumes
// an authenticated user id; issuing tokens is someone else's job.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// ScheduleConfig configures collection and trend rollup intervals.
type ScheduleConfig struct {
	CollectInterval string `yaml:"collect_interval"`
	TrendInterval   string `yaml:"trend_interval"`
}

// ParseCollectInterval returns the collect interval as time.Duration.
func (s ScheduleConfig) ParseCollectInterval() time.Duration {
	d, err := time.ParseDuration(s.CollectInterval)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// ParseTrendInterval returns the trend rollup interval as time.Duration.
func (s ScheduleConfig) ParseTrendInterval() time.Duration {
	d, err := time.ParseDuration(s.TrendInterval)
	if err != nil {
		return time.Hour
	}
	return d
}

// SourcesConfig holds configuration for all platform collectors.
type SourcesConfig struct {
	Reddit  RedditConfig  `yaml:"reddit"`
	GitHub  GitHubConfig  `yaml:"github"`
	Twitter TwitterConfig `yaml:"twitter"`
}

// RedditConfig for the Reddit collector.
type RedditConfig struct {
	Enabled      bool     `yaml:"enabled"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Subreddits   []string `yaml:"subreddits"`
}

// GitHubConfig for the GitHub issues collector.
type GitHubConfig struct {
	Enabled bool     `yaml:"enabled"`
	Token   string   `yaml:"token"`
	Repos   []string `yaml:"repos"`
}

// TwitterConfig for the Twitter/X collector.
type TwitterConfig struct {
	Enabled   bool     `yaml:"enabled"`
	NitterURL string   `yaml:"nitter_url"`
	Accounts  []string `yaml:"accounts"`
}

// ExportConfig caps file exports.
type ExportConfig struct {
	MaxRows int `yaml:"max_rows"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./demandscope.db"},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Schedule: ScheduleConfig{
			CollectInterval: "30m",
			TrendInterval:   "1h",
		},
		Sources: SourcesConfig{
			Reddit: RedditConfig{
				Enabled: false,
				Subreddits: []string{
					"SaaS", "startups", "Entrepreneur",
					"webdev", "productivity", "software",
				},
			},
			GitHub: GitHubConfig{Enabled: true},
			Twitter: TwitterConfig{
				Enabled:   false,
				NitterURL: "https://nitter.net",
			},
		},
		Export: ExportConfig{MaxRows: 10000},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEMANDSCOPE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("DEMANDSCOPE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DEMANDSCOPE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.Sources.GitHub.Token = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		cfg.Sources.Reddit.ClientID = v
		cfg.Sources.Reddit.Enabled = true
	}
	if v := os.Getenv("REDDIT_CLIENT_SECRET"); v != "" {
		cfg.Sources.Reddit.ClientSecret = v
	}
}
