// internal/pipeline/service.go
package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/metrics"
	"headline-agent/internal/common/observability"
	"headline-agent/internal/models"
	buildenvelope "headline-agent/internal/workers/headline/build-envelope"
	normalizeinput "headline-agent/internal/workers/headline/normalize-input"
)

// Outcome is the full result of one request: the envelope to send plus what
// produced it. Err is nil exactly when Envelope carries a result.
type Outcome struct {
	Status   int
	Envelope *models.OutboundEnvelope
	Result   *Result
	Mode     string
	Err      *apperrors.StandardError
}

// Service wires normalizer, runner and envelope builder into one call.
type Service struct {
	normalizer *normalizeinput.Handler
	runner     *Runner
	envelopes  *buildenvelope.Handler
	obs        *observability.Observability
	logger     logger.Logger
}

func NewService(
	normalizer *normalizeinput.Handler,
	runner *Runner,
	envelopes *buildenvelope.Handler,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		runner:     runner,
		envelopes:  envelopes,
		obs:        obs,
		logger:     log,
	}
}

// Handle is Process reduced to what the HTTP layer writes.
func (s *Service) Handle(ctx context.Context, src interface{}) (int, *models.OutboundEnvelope) {
	out := s.Process(ctx, src)
	return out.Status, out.Envelope
}

// Process never returns a nil Outcome or a nil Envelope.
func (s *Service) Process(ctx context.Context, src interface{}) *Outcome {
	start := time.Now()

	normalized, err := s.normalizer.Execute(ctx, src)
	var requestID json.RawMessage
	var mode string
	if normalized != nil {
		requestID = normalized.RequestID
		mode = normalized.Mode
	}
	if err != nil {
		return s.fail(ctx, start, requestID, mode, err)
	}

	log := s.logger.With(map[string]interface{}{
		"mode":      normalized.Mode,
		"requestId": string(requestID),
	})
	if normalized.TaskID != "" || normalized.MessageID != "" {
		// inbound ids are for correlation only; the response mints its own
		log.Info("inbound task received", map[string]interface{}{
			"inboundTaskId":    normalized.TaskID,
			"inboundMessageId": normalized.MessageID,
		})
	}

	result, err := s.runner.Run(ctx, normalized.Request, normalized.Topic)
	if err != nil {
		return s.fail(ctx, start, requestID, mode, err)
	}

	env, err := s.envelopes.Build(requestID, result.Formatted)
	if err != nil {
		return s.fail(ctx, start, requestID, mode, err)
	}

	metrics.WebhookRequests.WithLabelValues(mode, "success").Inc()
	s.obs.RecordRun(ctx, time.Since(start), "success")
	log.Info("headlines generated", map[string]interface{}{
		"taskId":   env.Result.ID,
		"producer": result.Producer,
		"best":     result.Set.Best,
		"duration": time.Since(start).String(),
	})

	return &Outcome{
		Status:   http.StatusOK,
		Envelope: env,
		Result:   result,
		Mode:     mode,
	}
}

func (s *Service) fail(ctx context.Context, start time.Time, requestID json.RawMessage, mode string, err error) *Outcome {
	stdErr := apperrors.Normalize(err)

	label := mode
	if label == "" {
		label = "unknown"
	}
	metrics.WebhookRequests.WithLabelValues(label, string(stdErr.Code)).Inc()
	s.obs.RecordRun(ctx, time.Since(start), string(stdErr.Code))

	fields := map[string]interface{}{
		"code":      string(stdErr.Code),
		"rpcCode":   stdErr.RPCCode(),
		"requestId": string(requestID),
		"error":     stdErr.Error(),
	}
	if stdErr.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields)
	} else {
		s.logger.Warn("request rejected", fields)
	}

	return &Outcome{
		Status:   stdErr.HTTPStatus(),
		Envelope: s.envelopes.BuildError(requestID, stdErr),
		Mode:     mode,
		Err:      stdErr,
	}
}
