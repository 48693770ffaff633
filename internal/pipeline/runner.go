// internal/pipeline/runner.go
package pipeline

import (
	"context"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/metrics"
	"headline-agent/internal/common/observability"
	"headline-agent/internal/models"
	formatresponse "headline-agent/internal/workers/headline/format-response"
	generatecandidates "headline-agent/internal/workers/headline/generate-candidates"
	selectbest "headline-agent/internal/workers/headline/select-best"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is what a successful run hands to the envelope builder.
type Result struct {
	Set       models.HeadlineSet
	Formatted *models.FormattedResult
	Producer  string
}

// Runner drives generate, select and format strictly in order. There are no
// retries; the first failing stage aborts the run.
type Runner struct {
	generate *generatecandidates.Handler
	selector *selectbest.Handler
	format   *formatresponse.Handler
	tracer   trace.Tracer
	logger   logger.Logger
}

func NewRunner(
	generate *generatecandidates.Handler,
	selector *selectbest.Handler,
	format *formatresponse.Handler,
	log logger.Logger,
) *Runner {
	return &Runner{
		generate: generate,
		selector: selector,
		format:   format,
		tracer:   observability.Tracer(),
		logger:   log.With(map[string]interface{}{"component": "pipeline"}),
	}
}

func (r *Runner) Run(ctx context.Context, req models.GenerationRequest, topic string) (*Result, error) {
	var generated *generatecandidates.Output
	err := r.stage(ctx, generatecandidates.TaskType, func(ctx context.Context) error {
		var err error
		generated, err = r.generate.Execute(ctx, &generatecandidates.Input{Request: req, Topic: topic})
		return err
	})
	if err != nil {
		return nil, err
	}

	var selected *selectbest.Output
	err = r.stage(ctx, selectbest.TaskType, func(ctx context.Context) error {
		var err error
		selected, err = r.selector.Execute(ctx, &selectbest.Input{Candidates: generated.Candidates})
		return err
	})
	if err != nil {
		return nil, err
	}

	var formatted *models.FormattedResult
	err = r.stage(ctx, formatresponse.TaskType, func(ctx context.Context) error {
		var err error
		formatted, err = r.format.Execute(ctx, &formatresponse.Input{
			Candidates: selected.Candidates,
			Best:       selected.Best,
			Topic:      topic,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Set:       models.HeadlineSet{Candidates: selected.Candidates, Best: selected.Best},
		Formatted: formatted,
		Producer:  generated.Producer,
	}, nil
}

func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "pipeline."+name,
		trace.WithAttributes(attribute.String("pipeline.stage", name)))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		stdErr := apperrors.Normalize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		r.logger.Debug("stage failed", map[string]interface{}{
			"stage": name,
			"code":  string(stdErr.Code),
		})
		return stdErr
	}
	return nil
}
