// internal/workers/headline/generate-candidates/cache.go
package generatecandidates

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

// CachingProducer stores producer answers in Redis. Cache failures never fail
// a generation; they are logged and the inner producer is called directly.
type CachingProducer struct {
	inner  Producer
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachingProducer(inner Producer, client *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *CachingProducer {
	return &CachingProducer{
		inner:  inner,
		client: client,
		ttl:    ttl,
		prefix: prefix,
		logger: log.With(map[string]interface{}{"component": "candidate-cache"}),
	}
}

func (p *CachingProducer) Name() string { return p.inner.Name() }

func (p *CachingProducer) Produce(ctx context.Context, req ProduceRequest) ([]string, error) {
	key := p.cacheKey(req)

	if cached, ok := p.lookup(ctx, key); ok {
		return cached, nil
	}

	lines, err := p.inner.Produce(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(lines) > 0 {
		p.store(ctx, key, lines)
	}
	return lines, nil
}

func (p *CachingProducer) lookup(ctx context.Context, key string) ([]string, bool) {
	raw, err := p.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	var lines []string
	if err := json.Unmarshal([]byte(raw), &lines); err != nil || len(lines) == 0 {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		p.logger.Warn("cache entry unreadable", map[string]interface{}{"key": key})
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return lines, true
}

func (p *CachingProducer) store(ctx context.Context, key string, lines []string) {
	data, err := json.Marshal(lines)
	if err != nil {
		return
	}
	if err := p.client.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.logger.Warn("cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

func (p *CachingProducer) cacheKey(req ProduceRequest) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		p.inner.Name(),
		string(req.Tone),
		req.Audience,
		req.Text,
	}, "|")))
	return p.prefix + hex.EncodeToString(sum[:])
}
