package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxToolRounds == 0 {
		cfg.Server.MaxToolRounds = 3
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 60 * time.Second
	}
	if cfg.Gemini.Primary == "" {
		cfg.Gemini.Primary = "models/gemini-2.5-flash"
	}
	if cfg.Failover.MinInterval == 0 {
		cfg.Failover.MinInterval = 5 * time.Second
	}
	if cfg.Failover.WindowCalls == 0 {
		cfg.Failover.WindowCalls = 15
	}
	if cfg.Failover.Window == 0 {
		cfg.Failover.Window = time.Minute
	}
	if cfg.Failover.RateLimitCooldown == 0 {
		cfg.Failover.RateLimitCooldown = 10 * time.Second
	}
	if cfg.Failover.MaxWait == 0 {
		cfg.Failover.MaxWait = 120 * time.Second
	}
	if cfg.Failover.QuotaExhaustedTTL == 0 {
		cfg.Failover.QuotaExhaustedTTL = time.Hour
	}
	if cfg.Failover.RateLimitedTTL == 0 {
		cfg.Failover.RateLimitedTTL = 5 * time.Minute
	}
	if cfg.Failover.OtherTTL == 0 {
		cfg.Failover.OtherTTL = 30 * time.Minute
	}
	if cfg.Failover.MaxSuggestedTTL == 0 {
		cfg.Failover.MaxSuggestedTTL = 30 * time.Minute
	}
	if cfg.Predict.ModelPath == "" {
		cfg.Predict.ModelPath = "assets/model_without_family.json"
	}
	if cfg.Predict.FamilyModelPath == "" {
		cfg.Predict.FamilyModelPath = "assets/model_with_family.json"
	}

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini.api_key is required")
	}

	return &cfg, nil
}
