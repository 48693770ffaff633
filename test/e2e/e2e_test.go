// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"headline-agent/internal/common/camunda"
	"headline-agent/internal/common/config"
	"headline-agent/internal/common/database"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/pipeline"
	"headline-agent/internal/server"
	ghj "headline-agent/internal/workers/headline/generate-headline-job"
)

// These tests need Redis and a Zeebe gateway. They run only with
// HEADLINE_E2E=1, e.g. against the docker-compose stack.
const enableEnv = "HEADLINE_E2E"

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func e2eConfig(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv(enableEnv) != "1" {
		t.Skipf("set %s=1 to run end-to-end tests", enableEnv)
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Producer.Kind = config.ProducerTemplate
	cfg.Cache.Enabled = true
	cfg.Cache.KeyPrefix = fmt.Sprintf("e2e:%d:", time.Now().UnixNano())
	cfg.Database.Redis.Address = envOr("E2E_REDIS_ADDRESS", "localhost:6379")
	cfg.Camunda.BrokerAddress = envOr("E2E_ZEEBE_ADDRESS", "localhost:26500")
	return cfg
}

func TestWebhookWithRedisCache(t *testing.T) {
	cfg := e2eConfig(t)
	ctx := context.Background()
	log := logger.NewTestLogger(t)

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis not reachable at %s", cfg.Database.Redis.Address)

	producer, err := pipeline.BuildProducer(ctx, cfg, rdb.GetClient(), log)
	require.NoError(t, err)

	srv := server.New(cfg, pipeline.NewServiceFromConfig(cfg, producer, nil, log), log)
	srv.AddReadinessCheck("redis", rdb.Ping)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	body := []byte(`{"jsonrpc":"2.0","id":"e2e-1","method":"message/send","params":{"message":{
		"kind":"message","role":"user","parts":[{"kind":"text","text":"Excited to announce our Series A!"}]}}}`)

	var first, second map[string]interface{}
	for _, dst := range []*map[string]interface{}{&first, &second} {
		resp, err := http.Post(ts.URL+cfg.Server.WebhookPath, "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
		resp.Body.Close()
	}

	// The second call is served from the cache, so the headlines match.
	assert.Equal(t, artifactData(t, first), artifactData(t, second))

	keys, err := rdb.GetClient().Keys(ctx, cfg.Cache.KeyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	resp, err := http.Get(ts.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestZeebeJobWorker(t *testing.T) {
	cfg := e2eConfig(t)
	cfg.Cache.Enabled = false
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	client, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err, "zeebe not reachable at %s", cfg.Camunda.BrokerAddress)
	defer client.Close()
	zb := client.GetClient()

	_, err = zb.NewDeployResourceCommand().AddResourceFile(bpmnPath(t)).Send(ctx)
	require.NoError(t, err)

	producer, err := pipeline.BuildProducer(ctx, cfg, nil, log)
	require.NoError(t, err)
	handler := ghj.NewHandler(ghj.LoadConfig(), pipeline.NewServiceFromConfig(cfg, producer, nil, log), log)
	w := camunda.NewWorker(zb, ghj.TaskType, 1, 30*time.Second, handler, log)
	defer w.Stop()

	vars := runInstance(ctx, t, zb, map[string]interface{}{
		"request": map[string]interface{}{"text": "Just completed my AWS certification", "tone": "casual"},
	})
	assert.NotEmpty(t, vars["bestHeadline"])
	assert.Len(t, vars["allHeadlines"], 5)

	envelope, ok := vars["headlineResponse"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2.0", envelope["jsonrpc"])
}

func runInstance(ctx context.Context, t *testing.T, zb zbc.Client, vars map[string]interface{}) map[string]interface{} {
	t.Helper()

	cmd, err := zb.NewCreateInstanceCommand().
		BPMNProcessId("linkedin-headline").
		LatestVersion().
		VariablesFromMap(vars)
	require.NoError(t, err)

	resp, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.GetVariables()), &out))
	return out
}

func bpmnPath(t *testing.T) string {
	t.Helper()
	for _, dir := range []string{"bpmn", "../bpmn", "../../bpmn"} {
		path := filepath.Join(dir, "linkedin-headline.bpmn")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Fatal("linkedin-headline.bpmn not found")
	return ""
}

func artifactData(t *testing.T, env map[string]interface{}) interface{} {
	t.Helper()
	result, ok := env["result"].(map[string]interface{})
	require.True(t, ok, "no result in %v", env)
	artifacts := result["artifacts"].([]interface{})
	parts := artifacts[1].(map[string]interface{})["parts"].([]interface{})
	data := parts[0].(map[string]interface{})["data"].(map[string]interface{})
	return data["allHeadlines"]
}
