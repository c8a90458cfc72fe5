package config

import (
	"time"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Failover FailoverConfig `yaml:"failover"`
	Predict  PredictConfig  `yaml:"predict"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxToolRounds  int      `yaml:"max_tool_rounds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// GeminiConfig holds provider connection settings.
type GeminiConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	Primary  string        `yaml:"primary_model"`
	Fallback string        `yaml:"fallback_model"`
}

// FailoverConfig holds throttle and failure-cache settings.
type FailoverConfig struct {
	MinInterval       time.Duration `yaml:"min_interval"`
	WindowCalls       int           `yaml:"window_calls"`
	Window            time.Duration `yaml:"window"`
	RateLimitCooldown time.Duration `yaml:"rate_limit_cooldown"`
	MaxWait           time.Duration `yaml:"max_wait"`
	QuotaExhaustedTTL time.Duration `yaml:"quota_exhausted_ttl"`
	RateLimitedTTL    time.Duration `yaml:"rate_limited_ttl"`
	OtherTTL          time.Duration `yaml:"other_ttl"`
	MaxSuggestedTTL   time.Duration `yaml:"max_suggested_ttl"`
}

// PredictConfig holds model artifact paths.
type PredictConfig struct {
	ModelPath       string `yaml:"model_path"`
	FamilyModelPath string `yaml:"family_model_path"`
}
