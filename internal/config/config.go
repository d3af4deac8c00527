package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Stream     StreamConfig     `mapstructure:"stream"     validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" (pgx) or "sqlite" (embedded).
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains the settings used to validate bearer tokens.
// An empty JWTSecret disables token validation; generation requests are then
// cached in the global scope.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// Enabled reports whether bearer token validation is configured.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string  `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string  `mapstructure:"model_name"          validate:"required"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"     validate:"gte=1,lte=600"`
	MaxRetries        int     `mapstructure:"max_retries"         validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=1"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst"               validate:"gte=1"`
	Temperature       float32 `mapstructure:"temperature"         validate:"gte=0,lte=2"`
	// BaseURL overrides the Gemini API endpoint. Empty uses the SDK default.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// StreamConfig controls the live-sync push streams.
type StreamConfig struct {
	HeartbeatSeconds int `mapstructure:"heartbeat_seconds" validate:"gte=1"`
	SinkBuffer       int `mapstructure:"sink_buffer"       validate:"gte=1"`
}

// GenerationConfig controls the generation cache.
type GenerationConfig struct {
	// SchemaVersion is embedded in every cache key. Bump it whenever the
	// expected output shape of a prompt changes.
	SchemaVersion string `mapstructure:"schema_version" validate:"required,alphanum"`
}
