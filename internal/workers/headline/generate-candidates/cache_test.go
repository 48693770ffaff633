// internal/workers/headline/generate-candidates/cache_test.go
package generatecandidates

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"headline-agent/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProducer struct {
	lines []string
	err   error
	calls int
}

func (p *countingProducer) Produce(ctx context.Context, req ProduceRequest) ([]string, error) {
	p.calls++
	return p.lines, p.err
}

func (p *countingProducer) Name() string { return "counting" }

func TestCachingProducer_HitAfterMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	inner := &countingProducer{lines: []string{"A", "B"}}
	p := NewCachingProducer(inner, client, time.Hour, "headline:candidates:", logger.NewTestLogger(t))
	req := ProduceRequest{Text: "hello world", Tone: "professional", Count: 5}

	first, err := p.Produce(context.Background(), req)
	require.NoError(t, err)
	second, err := p.Produce(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	key := p.cacheKey(req)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
	assert.Equal(t, "counting", p.Name())
}

func TestCachingProducer_KeyVariesByTone(t *testing.T) {
	p := NewCachingProducer(&countingProducer{}, nil, time.Minute, "p:", logger.NewNoOpLogger())

	a := p.cacheKey(ProduceRequest{Text: "x", Tone: "casual"})
	b := p.cacheKey(ProduceRequest{Text: "x", Tone: "educational"})
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, "p:")
}

func TestCachingProducer_DoesNotCacheErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	inner := &countingProducer{err: errors.New("boom")}
	p := NewCachingProducer(inner, client, time.Hour, "k:", logger.NewNoOpLogger())

	_, err := p.Produce(context.Background(), ProduceRequest{Text: "t"})
	assert.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestCachingProducer_RedisFailureDegrades(t *testing.T) {
	db, mock := redismock.NewClientMock()

	inner := &countingProducer{lines: []string{"Only"}}
	p := NewCachingProducer(inner, db, time.Minute, "k:", logger.NewNoOpLogger())
	req := ProduceRequest{Text: "t", Tone: "casual"}
	key := p.cacheKey(req)
	data, _ := json.Marshal([]string{"Only"})

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, data, time.Minute).SetErr(errors.New("connection refused"))

	lines, err := p.Produce(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only"}, lines)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingProducer_CorruptEntryIsIgnored(t *testing.T) {
	db, mock := redismock.NewClientMock()

	inner := &countingProducer{lines: []string{"Fresh"}}
	p := NewCachingProducer(inner, db, time.Minute, "k:", logger.NewNoOpLogger())
	req := ProduceRequest{Text: "t"}
	key := p.cacheKey(req)
	data, _ := json.Marshal([]string{"Fresh"})

	mock.ExpectGet(key).SetVal("not-json")
	mock.ExpectSet(key, data, time.Minute).SetVal("OK")

	lines, err := p.Produce(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fresh"}, lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}
