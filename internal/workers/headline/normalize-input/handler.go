// internal/workers/headline/normalize-input/handler.go
package normalizeinput

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/models"
)

const TaskType = "normalize-input"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute recovers a GenerationRequest from src. On failure the returned
// Output is still non-nil when the request id could be read, so the caller
// can echo it in the error envelope.
func (h *Handler) Execute(ctx context.Context, src interface{}) (*Output, error) {
	body, extractor, err := extractBody(ctx, src)
	if err != nil {
		h.logger.Warn("body extraction failed", map[string]interface{}{
			"extractor": extractor,
			"error":     err.Error(),
		})
		return nil, err
	}

	out := &Output{Extractor: extractor}
	if _, ok := body.value.(map[string]interface{}); ok {
		out.RequestID = rawID(body.raw)
	}

	if err := h.interpret(body.value, out); err != nil {
		h.logger.Warn("request rejected", map[string]interface{}{
			"mode":  out.Mode,
			"error": err.Error(),
		})
		return out, err
	}

	out.Topic = ExtractTopic(out.Request.Text, h.config.TopicMaxLength)

	h.logger.Debug("request normalized", map[string]interface{}{
		"mode":      out.Mode,
		"extractor": out.Extractor,
		"method":    out.Method,
		"taskId":    out.TaskID,
		"messageId": out.MessageID,
		"tone":      string(out.Request.Tone),
		"textLen":   len(out.Request.Text),
	})
	return out, nil
}

func (h *Handler) interpret(body interface{}, out *Output) error {
	switch v := body.(type) {
	case string:
		out.Mode = ModeText
		return fill(out, v, "", "")
	case map[string]interface{}:
		if _, ok := v["jsonrpc"]; ok {
			out.Mode = ModeA2A
			return interpretEnvelope(v, out)
		}
		if _, ok := v["text"]; ok {
			out.Mode = ModeObject
			return interpretObject(v, out)
		}
		return apperrors.NewInvalidProtocolError(`missing "jsonrpc": "2.0"`)
	case []interface{}:
		return apperrors.NewInvalidProtocolError("batch requests are not supported")
	default:
		return apperrors.NewInvalidProtocolError("request must be a JSON object or a text prompt")
	}
}

func interpretObject(obj map[string]interface{}, out *Output) error {
	text, ok := obj["text"].(string)
	if !ok {
		return apperrors.NewInvalidParamsError("text must be a string")
	}
	audience, tone, err := options(obj, "")
	if err != nil {
		return err
	}
	return fill(out, text, audience, tone)
}

func interpretEnvelope(obj map[string]interface{}, out *Output) error {
	if version, _ := obj["jsonrpc"].(string); version != models.JSONRPCVersion {
		return apperrors.NewInvalidProtocolError(`jsonrpc must be "2.0"`)
	}
	out.Method, _ = obj["method"].(string)

	params, ok := obj["params"].(map[string]interface{})
	if !ok {
		return apperrors.NewInvalidParamsError("params.message is required")
	}
	message, ok := params["message"].(map[string]interface{})
	if !ok {
		return apperrors.NewInvalidParamsError("params.message is required")
	}
	out.TaskID, _ = message["taskId"].(string)
	out.MessageID, _ = message["messageId"].(string)

	rawParts, ok := message["parts"]
	if !ok || rawParts == nil {
		return apperrors.NewInvalidParamsError("params.message.parts is required")
	}
	parts, ok := rawParts.([]interface{})
	if !ok {
		return apperrors.NewInvalidParamsError("params.message.parts must be an array")
	}
	if len(parts) == 0 {
		return apperrors.NewInvalidParamsError("params.message.parts must not be empty")
	}

	var textPart, dataPart map[string]interface{}
	for _, p := range parts {
		part, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		kind, _ := part["kind"].(string)
		switch {
		case kind == models.PartKindText && textPart == nil:
			textPart = part
		case kind == models.PartKindData && dataPart == nil:
			dataPart = part
		}
	}
	if textPart == nil {
		return apperrors.NewInvalidParamsError("params.message.parts contains no text part")
	}
	text, ok := textPart["text"].(string)
	if !ok {
		return apperrors.NewInvalidParamsError("text part is missing a string text field")
	}

	var audience, tone string
	if dataPart != nil {
		if data, ok := dataPart["data"].(map[string]interface{}); ok {
			var err error
			if audience, tone, err = options(data, "data part "); err != nil {
				return err
			}
		}
	}
	return fill(out, text, audience, tone)
}

// options reads the optional targetAudience and tone fields.
func options(obj map[string]interface{}, where string) (string, string, error) {
	var audience, tone string
	if raw, ok := obj["targetAudience"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return "", "", apperrors.NewInvalidParamsError(where + "targetAudience must be a string")
		}
		audience = strings.TrimSpace(s)
	}
	if raw, ok := obj["tone"]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return "", "", apperrors.NewInvalidParamsError(where + "tone must be a string")
		}
		tone = s
	}
	return audience, tone, nil
}

func fill(out *Output, text, audience, tone string) error {
	parsedTone, ok := models.ParseTone(tone)
	if !ok {
		return apperrors.NewInvalidParamsError(fmt.Sprintf(
			"unsupported tone %q (want professional, casual, inspirational or educational)", tone))
	}
	cleaned := Clean(text)
	if cleaned == "" {
		return apperrors.NewInvalidParamsError("message text is empty after cleaning")
	}
	out.Request = models.GenerationRequest{
		Text:           cleaned,
		TargetAudience: audience,
		Tone:           parsedTone,
	}
	return nil
}

// rawID returns the inbound id exactly as it appeared in the body, escapes
// and number literal included. A missing or null id yields nil (null).
func rawID(doc []byte) json.RawMessage {
	if len(doc) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil
	}
	id, ok := fields["id"]
	if !ok || len(id) == 0 {
		return nil
	}
	switch c := id[0]; {
	case c == '"', c == '-', c >= '0' && c <= '9':
		return id
	default:
		// null, objects, arrays and booleans are not usable JSON-RPC ids.
		return nil
	}
}
