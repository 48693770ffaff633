// cmd/tools/headline-cli/cmd_generate.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"headline-agent/internal/common/config"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/models"
	"headline-agent/internal/pipeline"
	normalizeinput "headline-agent/internal/workers/headline/normalize-input"
)

var generateFlags struct {
	text       string
	tone       string
	audience   string
	requestID  string
	configPath string
	producer   string
	verbose    bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the headline pipeline once and print the JSON-RPC response",
	Long: "generate wraps --text (or stdin) in a message/send request, runs it through\n" +
		"the same pipeline as the webhook and prints the response envelope.",
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.text, "text", "", "Post text; read from stdin when empty")
	f.StringVar(&generateFlags.tone, "tone", "", "professional, casual, inspirational or educational")
	f.StringVar(&generateFlags.audience, "audience", "", "Target audience")
	f.StringVar(&generateFlags.requestID, "id", "cli-1", "JSON-RPC request id")
	f.StringVar(&generateFlags.configPath, "config", "", "Config file (default: configs/config.yaml lookup)")
	f.StringVar(&generateFlags.producer, "producer", "", "Override producer.kind (template, gateway, gemini)")
	f.BoolVar(&generateFlags.verbose, "verbose", false, "Log pipeline activity to stderr")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	text := generateFlags.text
	if strings.TrimSpace(text) == "" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(raw)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no post text given (use --text or stdin)")
	}

	cfg, err := loadConfig(generateFlags.configPath)
	if err != nil {
		return err
	}
	if generateFlags.producer != "" {
		cfg.Producer.Kind = generateFlags.producer
	}

	log := logger.NewNoOpLogger()
	if generateFlags.verbose {
		zapLog, err := logger.NewWithOutput("debug", "console", "stderr")
		if err != nil {
			return err
		}
		log = logger.NewZapAdapter(zapLog)
	}

	producer, err := pipeline.BuildProducer(cmd.Context(), cfg, nil, log)
	if err != nil {
		return err
	}
	service := pipeline.NewServiceFromConfig(cfg, producer, nil, log)

	outcome := service.Process(cmd.Context(), normalizeinput.FromValue(buildRequest(text)))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(outcome.Envelope); err != nil {
		return err
	}
	if outcome.Err != nil {
		return fmt.Errorf("generation failed: %s", outcome.Err.Error())
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func buildRequest(text string) map[string]interface{} {
	parts := []interface{}{
		map[string]interface{}{"kind": models.PartKindText, "text": text},
	}
	if generateFlags.tone != "" || generateFlags.audience != "" {
		data := map[string]interface{}{}
		if generateFlags.tone != "" {
			data["tone"] = generateFlags.tone
		}
		if generateFlags.audience != "" {
			data["targetAudience"] = generateFlags.audience
		}
		parts = append(parts, map[string]interface{}{"kind": models.PartKindData, "data": data})
	}

	return map[string]interface{}{
		"jsonrpc": models.JSONRPCVersion,
		"id":      generateFlags.requestID,
		"method":  models.MethodMessageSend,
		"params": map[string]interface{}{
			"message": map[string]interface{}{
				"kind":  models.KindMessage,
				"role":  models.RoleUser,
				"parts": parts,
			},
		},
	}
}
