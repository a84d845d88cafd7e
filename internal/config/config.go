package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	// Gemini credentials and model names. The API key comes from the
	// environment and must never be logged.
	GeminiAPIKey string `mapstructure:"-"`
	VisionModel  string `mapstructure:"vision_model"`
	ChatModel    string `mapstructure:"chat_model"`

	StorageBackend string `mapstructure:"storage_backend"` // "memory" or "firestore"
	GCPProjectID   string `mapstructure:"gcp_project"`

	UseMockGateway bool `mapstructure:"use_mock_gateway"` // true = no real model calls

	// HistoryLimit caps how many transcript turns are replayed into
	// each chat request.
	HistoryLimit int `mapstructure:"history_limit"`

	LogLevel string `mapstructure:"log_level"`
}

// Load builds the config from an optional YAML file plus SMARTFARM_*
// environment overrides.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("vision_model", "gemini-1.5-flash")
	v.SetDefault("chat_model", "gemini-1.5-flash")
	v.SetDefault("storage_backend", "memory")
	v.SetDefault("gcp_project", "")
	v.SetDefault("use_mock_gateway", false)
	v.SetDefault("history_limit", 20)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("SMARTFARM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv("SMARTFARM_CONFIG"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Credential is environment-only, never part of the config file.
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("SMARTFARM_GEMINI_API_KEY")
	}

	if !cfg.UseMockGateway && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set (or SMARTFARM_USE_MOCK_GATEWAY=true)")
	}
	if cfg.StorageBackend == "firestore" && cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("SMARTFARM_GCP_PROJECT is required for the firestore storage backend")
	}

	return cfg, nil
}
