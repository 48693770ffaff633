// internal/workers/headline/generate-headline-job/handler.go
package generateheadlinejob

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/metrics"
	"headline-agent/internal/pipeline"
	normalizeinput "headline-agent/internal/workers/headline/normalize-input"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "linkedin-headline-generate"

// Handler runs the headline pipeline for a Zeebe job. Variables are either a
// plain {"text": ...} object or {"request": <JSON-RPC envelope>}.
type Handler struct {
	config     *Config
	service    *pipeline.Service
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, service *pipeline.Service, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		service:    service,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer func() {
		metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Process(ctx, job.Variables)
	if err != nil {
		bpmnErr := h.errHandler.HandleJobError(ctx, client, job, err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Process runs the pipeline over raw job variables and returns the variables
// to complete the job with.
func (h *Handler) Process(ctx context.Context, variables string) (map[string]interface{}, error) {
	vars, err := decodeVariables(variables)
	if err != nil {
		return nil, apperrors.NewMalformedBodyError("job variables: " + err.Error())
	}

	var src interface{} = vars
	if request, ok := vars["request"]; ok {
		src = request
	}

	outcome := h.service.Process(ctx, normalizeinput.FromValue(src))
	if outcome.Err != nil {
		return nil, outcome.Err
	}

	return map[string]interface{}{
		"headlineResponse": outcome.Envelope,
		"bestHeadline":     outcome.Result.Set.Best,
		"allHeadlines":     outcome.Result.Set.Candidates,
	}, nil
}

func decodeVariables(variables string) (map[string]interface{}, error) {
	vars := map[string]interface{}{}
	if len(bytes.TrimSpace([]byte(variables))) == 0 {
		return vars, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(variables)))
	dec.UseNumber()
	if err := dec.Decode(&vars); err != nil {
		return nil, err
	}
	return vars, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output map[string]interface{}) {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, apperrors.NewInternalError(err))
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"best":   output["bestHeadline"],
	})
}
