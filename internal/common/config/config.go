// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Producer      ProducerConfig      `mapstructure:"producer"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Agent         AgentConfig         `mapstructure:"agent"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	WebhookPath     string `mapstructure:"webhook_path"`
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PipelineConfig holds the generation pipeline knobs.
type PipelineConfig struct {
	TopicMaxLength  int `mapstructure:"topic_max_length"`
	ProducerTimeout int `mapstructure:"producer_timeout"` // milliseconds
}

// Producer kinds.
const (
	ProducerTemplate = "template"
	ProducerGateway  = "gateway"
	ProducerGemini   = "gemini"
)

// ProducerConfig selects and configures the headline producer backend.
type ProducerConfig struct {
	Kind         string        `mapstructure:"kind"`
	SystemPrompt string        `mapstructure:"system_prompt"`
	Gateway      GatewayConfig `mapstructure:"gateway"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
}

type GatewayConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// CacheConfig controls the redis-backed candidate cache.
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TTL       int    `mapstructure:"ttl"` // milliseconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	JobType        string `mapstructure:"job_type"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type ObservabilityConfig struct {
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
	Tracing        TracingConfig `mapstructure:"tracing"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// AgentConfig feeds the published agent card.
type AgentConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	URL         string `mapstructure:"url"`
}
