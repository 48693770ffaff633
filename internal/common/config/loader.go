// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSystemPrompt = `You write LinkedIn headlines. Given a post, reply with exactly five distinct headline options, one per line, without commentary.`

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides. A missing base file is not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars replaces ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	setIfEmpty := func(dst *string, envKeys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range envKeys {
			if val := os.Getenv(k); val != "" {
				*dst = val
				return
			}
		}
	}

	setIfEmpty(&cfg.Producer.Gateway.APIKey, "GENAI_API_KEY")
	setIfEmpty(&cfg.Producer.Gateway.BaseURL, "GENAI_BASE_URL")
	setIfEmpty(&cfg.Producer.Gemini.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Camunda.BrokerAddress, "ZEEBE_ADDRESS")
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "headline-agent"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.WebhookPath == "" {
		cfg.Server.WebhookPath = "/webhook/linkedin-headline"
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Pipeline.TopicMaxLength == 0 {
		cfg.Pipeline.TopicMaxLength = 100
	}
	if cfg.Pipeline.ProducerTimeout == 0 {
		cfg.Pipeline.ProducerTimeout = 30000
	}

	if cfg.Producer.Kind == "" {
		cfg.Producer.Kind = ProducerTemplate
	}
	if cfg.Producer.SystemPrompt == "" {
		cfg.Producer.SystemPrompt = defaultSystemPrompt
	}
	if cfg.Producer.Gateway.Timeout == 0 {
		cfg.Producer.Gateway.Timeout = 20000
	}
	if cfg.Producer.Gateway.MaxTokens == 0 {
		cfg.Producer.Gateway.MaxTokens = 300
	}
	if cfg.Producer.Gateway.Temperature == 0 {
		cfg.Producer.Gateway.Temperature = 0.7
	}
	if cfg.Producer.Gemini.Model == "" {
		cfg.Producer.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.Producer.Gemini.Temperature == 0 {
		cfg.Producer.Gemini.Temperature = 0.8
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600000
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "headline:candidates:"
	}

	if cfg.Camunda.JobType == "" {
		cfg.Camunda.JobType = "linkedin-headline-generate"
	}
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 60000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Observability.Tracing.ServiceName == "" {
		cfg.Observability.Tracing.ServiceName = cfg.App.Name
	}
	if cfg.Observability.Tracing.SamplingRate == 0 {
		cfg.Observability.Tracing.SamplingRate = 1.0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Agent.Name == "" {
		cfg.Agent.Name = "LinkedIn Headline Generator"
	}
	if cfg.Agent.Description == "" {
		cfg.Agent.Description = "Generates five LinkedIn headline options for a post and recommends one."
	}
}

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.Server.WebhookPath, "/") {
		return fmt.Errorf("server.webhook_path must start with /")
	}
	if cfg.Pipeline.TopicMaxLength < 20 || cfg.Pipeline.TopicMaxLength > 200 {
		return fmt.Errorf("pipeline.topic_max_length must be between 20 and 200")
	}
	if cfg.Pipeline.ProducerTimeout <= 0 {
		return fmt.Errorf("pipeline.producer_timeout must be positive")
	}

	switch cfg.Producer.Kind {
	case ProducerTemplate:
	case ProducerGateway:
		if cfg.Producer.Gateway.BaseURL == "" {
			return fmt.Errorf("producer.gateway.base_url is required for the gateway producer")
		}
	case ProducerGemini:
		if cfg.Producer.Gemini.APIKey == "" {
			return fmt.Errorf("producer.gemini.api_key is required for the gemini producer")
		}
	default:
		return fmt.Errorf("producer.kind %q is not one of template, gateway, gemini", cfg.Producer.Kind)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	if cfg.Observability.Tracing.Enabled && cfg.Observability.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("observability.tracing.jaeger_endpoint is required when tracing is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
