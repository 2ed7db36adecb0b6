package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config
// file. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory; its absence is fine.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// ROSETTA_SERVER_PORT overrides server.port, and so on.
	v.SetEnvPrefix("ROSETTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the values the desktop client ships with.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_wait", 5*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("translation.debounce_delay", 500*time.Millisecond)
	v.SetDefault("translation.attempt_timeout", 60*time.Second)
	v.SetDefault("translation.max_retries", 3)
	v.SetDefault("translation.memory_max_retries", 1)
	v.SetDefault("translation.initial_delay", 1000*time.Millisecond)
	v.SetDefault("translation.max_delay", 10000*time.Millisecond)
	v.SetDefault("translation.multiplier", 2.0)
	v.SetDefault("translation.pool_size", 0)
	v.SetDefault("translation.max_history", 50)

	v.SetDefault("llm.model_name", "gemini-2.0-flash")

	v.SetDefault("update.repo", "")
	v.SetDefault("update.timeout", 15*time.Second)
}

// bindEnvKeys binds every known key explicitly: AutomaticEnv alone does
// not surface env-only keys through Unmarshal.
func bindEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.port",
		"server.log_level",
		"server.log_format",
		"server.shutdown_wait",
		"database.url",
		"redis.addr",
		"redis.password",
		"redis.db",
		"redis.ttl",
		"translation.debounce_delay",
		"translation.attempt_timeout",
		"translation.max_retries",
		"translation.memory_max_retries",
		"translation.initial_delay",
		"translation.max_delay",
		"translation.multiplier",
		"translation.pool_size",
		"translation.max_history",
		"llm.gemini_api_key",
		"llm.model_name",
		"update.repo",
		"update.timeout",
	}
	for _, key := range keys {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key)
	}
}
