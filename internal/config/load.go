package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. PATHWAY_SERVER_PORT or PATHWAY_LLM_GEMINI_API_KEY.
const EnvPrefix = "PATHWAY"

// defaults lists every known key. Keys must be registered here for
// environment-only values to be picked up by Unmarshal.
var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 10,

	"database.driver":         "postgres",
	"database.url":            "",
	"database.auto_migrate":   true,
	"database.max_open_conns": 10,

	"auth.jwt_secret": "",

	"llm.gemini_api_key":      "",
	"llm.model_name":          "gemini-2.0-flash",
	"llm.timeout_seconds":     60,
	"llm.max_retries":         0,
	"llm.retry_delay_seconds": 2,
	"llm.requests_per_second": 2.0,
	"llm.burst":               4,
	"llm.temperature":         0.4,
	"llm.base_url":            "",

	"stream.heartbeat_seconds": 25,
	"stream.sink_buffer":       16,

	"generation.schema_version": "v1",
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
