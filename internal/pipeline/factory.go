// internal/pipeline/factory.go
package pipeline

import (
	"context"
	"fmt"

	"headline-agent/internal/common/config"
	"headline-agent/internal/common/llm"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/observability"
	buildenvelope "headline-agent/internal/workers/headline/build-envelope"
	formatresponse "headline-agent/internal/workers/headline/format-response"
	generatecandidates "headline-agent/internal/workers/headline/generate-candidates"
	normalizeinput "headline-agent/internal/workers/headline/normalize-input"
	selectbest "headline-agent/internal/workers/headline/select-best"

	"github.com/redis/go-redis/v9"
)

// BuildProducer picks the producer named by cfg.Producer.Kind. A non-nil
// cache client wraps it in the Redis cache when caching is enabled.
func BuildProducer(ctx context.Context, cfg *config.Config, cache *redis.Client, log logger.Logger) (generatecandidates.Producer, error) {
	var producer generatecandidates.Producer

	switch cfg.Producer.Kind {
	case config.ProducerTemplate, "":
		producer = generatecandidates.NewTemplateProducer()

	case config.ProducerGateway:
		gw := cfg.Producer.Gateway
		producer = generatecandidates.NewGenerativeProducer(llm.NewGateway(llm.GatewayConfig{
			BaseURL:     gw.BaseURL,
			APIKey:      gw.APIKey,
			MaxRetries:  gw.MaxRetries,
			MaxTokens:   gw.MaxTokens,
			Temperature: gw.Temperature,
			Timeout:     config.GetDuration(gw.Timeout),
		}), cfg.Producer.SystemPrompt)

	case config.ProducerGemini:
		gm := cfg.Producer.Gemini
		gen, err := llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:      gm.APIKey,
			BaseURL:     gm.BaseURL,
			Model:       gm.Model,
			Temperature: gm.Temperature,
			MaxTokens:   gm.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		producer = generatecandidates.NewGenerativeProducer(gen, cfg.Producer.SystemPrompt)

	default:
		return nil, fmt.Errorf("unknown producer kind %q", cfg.Producer.Kind)
	}

	if cfg.Cache.Enabled && cache != nil {
		producer = generatecandidates.NewCachingProducer(
			producer,
			cache,
			config.GetDuration(cfg.Cache.TTL),
			cfg.Cache.KeyPrefix,
			log,
		)
	}
	return producer, nil
}

// NewServiceFromConfig assembles the whole request flow around producer.
func NewServiceFromConfig(cfg *config.Config, producer generatecandidates.Producer, obs *observability.Observability, log logger.Logger) *Service {
	normalizer := normalizeinput.NewHandler(&normalizeinput.Config{
		TopicMaxLength: cfg.Pipeline.TopicMaxLength,
	}, log)

	generate := generatecandidates.NewHandler(&generatecandidates.Config{
		Count:   generatecandidates.LoadConfig().Count,
		Timeout: config.GetDuration(cfg.Pipeline.ProducerTimeout),
	}, producer, log)

	runner := NewRunner(generate, selectbest.NewHandler(log), formatresponse.NewHandler(log), log)

	return NewService(normalizer, runner, buildenvelope.NewHandler(log), obs, log)
}
