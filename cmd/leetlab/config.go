package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"leetlab/internal/common/cache"
	"leetlab/internal/common/db"
	"leetlab/internal/common/http/middleware"
	"leetlab/internal/judge0"
	"leetlab/pkg/utils/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr         = "0.0.0.0:8080"
	defaultReadTimeout      = 5 * time.Second
	defaultWriteTimeout     = 10 * time.Minute
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultBlacklistTimeout = 200 * time.Millisecond
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// AuthConfig holds token and session cookie settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwtSecret"`
	JWTIssuer        string        `yaml:"jwtIssuer"`
	TokenTTL         time.Duration `yaml:"tokenTTL"`
	LoginFailTTL     time.Duration `yaml:"loginFailTTL"`
	LoginFailLimit   int           `yaml:"loginFailLimit"`
	BlacklistTimeout time.Duration `yaml:"blacklistTimeout"`
	CookieSecure     bool          `yaml:"cookieSecure"`
	CookieDomain     string        `yaml:"cookieDomain"`
}

// SubmissionConfig holds user submission limits.
type SubmissionConfig struct {
	MaxCodeBytes int `yaml:"maxCodeBytes"`
}

// RateLimitConfig caps the routes that reach the judge or check passwords.
type RateLimitConfig struct {
	Auth         middleware.RateLimitPolicy `yaml:"auth"`
	ProblemWrite middleware.RateLimitPolicy `yaml:"problemWrite"`
	Submission   middleware.RateLimitPolicy `yaml:"submission"`
}

// AppConfig holds the leetlab server configuration.
type AppConfig struct {
	Server     ServerConfig      `yaml:"server"`
	Logger     logger.Config     `yaml:"logger"`
	Database   db.MySQLConfig    `yaml:"database"`
	Redis      cache.RedisConfig `yaml:"redis"`
	Judge0     judge0.Config     `yaml:"judge0"`
	Auth       AuthConfig        `yaml:"auth"`
	Submission SubmissionConfig  `yaml:"submission"`
	RateLimit  RateLimitConfig   `yaml:"rateLimit"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// loadAppConfig reads the YAML file, then .env, then environment overrides.
// An empty path skips the file.
func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env failed: %w", err)
	}
	applyEnvOverrides(&cfg, os.Getenv)

	if err := finalizeAppConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *AppConfig, getenv func(string) string) {
	if v := getenv("JUDGE0_API_URL"); v != "" {
		cfg.Judge0.BaseURL = v
	}
	if v := getenv("JUDGE0_AUTH_TOKEN"); v != "" {
		cfg.Judge0.AuthToken = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

func finalizeAppConfig(cfg *AppConfig) error {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	// Problem creation polls the judge once per reference language.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Auth.BlacklistTimeout == 0 {
		cfg.Auth.BlacklistTimeout = defaultBlacklistTimeout
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stdout"
	}

	if err := cfg.Judge0.ApplyDefaults(); err != nil {
		return fmt.Errorf("judge0: %w (set JUDGE0_API_URL)", err)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if cfg.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required")
	}
	return nil
}
