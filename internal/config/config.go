package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Translation TranslationConfig `mapstructure:"translation" validate:"required"`
	LLM         LLMConfig         `mapstructure:"llm" validate:"required"`
	Update      UpdateConfig      `mapstructure:"update"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`

	// ShutdownWait bounds how long graceful shutdown waits for in-flight
	// translation attempts to drain.
	ShutdownWait time.Duration `mapstructure:"shutdown_wait" validate:"min=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig configures the optional translation result cache. An empty
// address disables caching entirely.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"min=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"min=0"`
}

// TranslationConfig tunes the task orchestration engine: debouncing,
// per-attempt timeout and the retry backoff schedule.
type TranslationConfig struct {
	DebounceDelay    time.Duration `mapstructure:"debounce_delay" validate:"min=0"`
	AttemptTimeout   time.Duration `mapstructure:"attempt_timeout" validate:"required,gt=0"`
	MaxRetries       int           `mapstructure:"max_retries" validate:"min=0"`
	MemoryMaxRetries int           `mapstructure:"memory_max_retries" validate:"min=0"`
	InitialDelay     time.Duration `mapstructure:"initial_delay" validate:"required,gt=0"`
	MaxDelay         time.Duration `mapstructure:"max_delay" validate:"required,gt=0"`
	Multiplier       float64       `mapstructure:"multiplier" validate:"required,gt=1"`
	PoolSize         int           `mapstructure:"pool_size" validate:"min=0,max=64"`
	MaxHistory       int           `mapstructure:"max_history" validate:"min=1"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
}

// UpdateConfig configures the release update checker.
type UpdateConfig struct {
	// Repo is the GitHub "owner/name" to check releases against. Empty
	// disables the checker.
	Repo    string        `mapstructure:"repo"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`
}
