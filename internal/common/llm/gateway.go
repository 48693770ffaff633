// internal/common/llm/gateway.go
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	httpclient "headline-agent/internal/common/http"
)

// GatewayConfig points at a GenAI gateway exposing POST /api/ai/generate.
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	MaxRetries  int
	MaxTokens   int
	Temperature float64
	RetryDelay  time.Duration
	// Timeout bounds one GenerateText call including retries. Zero means the
	// caller's context alone decides.
	Timeout time.Duration
}

// Gateway calls the internal GenAI gateway over HTTP.
type Gateway struct {
	config GatewayConfig
	client *httpclient.Client
}

func NewGateway(cfg GatewayConfig) *Gateway {
	opts := []httpclient.Option{httpclient.WithRetries(cfg.MaxRetries)}
	if cfg.RetryDelay > 0 {
		opts = append(opts, httpclient.WithBaseDelay(cfg.RetryDelay))
	}
	if cfg.APIKey != "" {
		opts = append(opts, httpclient.WithHeader("Authorization", "Bearer "+cfg.APIKey))
	}
	return &Gateway{
		config: cfg,
		client: httpclient.NewClient(opts...),
	}
}

func (g *Gateway) Name() string { return "gateway" }

type gatewayRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type gatewayResponse struct {
	Text string `json:"text"`
}

func (g *Gateway) GenerateText(ctx context.Context, req Request) (string, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	url := strings.TrimRight(g.config.BaseURL, "/") + "/api/ai/generate"

	var resp gatewayResponse
	err := g.client.PostJSON(ctx, url, gatewayRequest{
		Prompt:      req.Prompt,
		System:      req.System,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}, &resp)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("genai gateway: %w", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Text, nil
}
