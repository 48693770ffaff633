// internal/workers/headline/generate-candidates/handler.go
package generatecandidates

import (
	"context"
	"errors"
	"strings"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/metrics"
)

const TaskType = "generate-candidates"

// Topic-derived frames appended when the producer returned too few lines.
var fallbackFrames = []string{
	"{topic}: What You Need to Know",
	"Why {topic} Matters",
	"{topic}: Key Takeaways",
	"My Take on {topic}",
	"Let's Talk About {topic}",
	"The Story Behind {topic}",
	"{topic}: Lessons Learned",
}

const fallbackTopicRunes = 60

type Handler struct {
	config   *Config
	producer Producer
	logger   logger.Logger
}

func NewHandler(config *Config, producer Producer, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config:   config,
		producer: producer,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
			"producer": producer.Name(),
		}),
	}
}

type produceResult struct {
	lines []string
	err   error
}

// Execute asks the producer for candidates under the configured deadline and
// returns exactly Config.Count distinct headlines.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	topic := strings.TrimSpace(input.Topic)
	if topic == "" {
		topic = fallbackTopic(input.Request.Text)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	// Buffered so the producer goroutine never blocks after a timeout.
	done := make(chan produceResult, 1)
	go func() {
		lines, err := h.producer.Produce(ctx, ProduceRequest{
			Text:     input.Request.Text,
			Topic:    topic,
			Audience: input.Request.TargetAudience,
			Tone:     input.Request.Tone,
			Count:    h.config.Count,
		})
		done <- produceResult{lines: lines, err: err}
	}()

	var res produceResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = produceResult{err: ctx.Err()}
	}

	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) {
			metrics.ProducerCalls.WithLabelValues(h.producer.Name(), "timeout").Inc()
			h.logger.Warn("producer timed out", map[string]interface{}{
				"timeout": h.config.Timeout.String(),
			})
			return nil, apperrors.NewProducerTimeoutError(h.config.Timeout)
		}
		metrics.ProducerCalls.WithLabelValues(h.producer.Name(), "error").Inc()
		h.logger.Error("producer failed", map[string]interface{}{
			"error": res.err.Error(),
		})
		return nil, apperrors.NewProducerFailureError(res.err)
	}

	candidates := dedupe(res.lines, h.config.Count)
	if len(candidates) == 0 {
		metrics.ProducerCalls.WithLabelValues(h.producer.Name(), "empty").Inc()
		return nil, apperrors.NewProducerFailureError(errors.New("producer returned no usable headlines"))
	}
	metrics.ProducerCalls.WithLabelValues(h.producer.Name(), "success").Inc()

	produced := len(candidates)
	candidates = backfill(candidates, topic, h.config.Count)

	h.logger.Debug("candidates generated", map[string]interface{}{
		"produced":   produced,
		"backfilled": len(candidates) - produced,
	})

	return &Output{
		Candidates: candidates,
		Producer:   h.producer.Name(),
		Backfilled: len(candidates) - produced,
	}, nil
}

// dedupe trims lines, drops blanks and case-insensitive repeats, and keeps at
// most limit entries in their original order.
func dedupe(lines []string, limit int) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, limit)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}

func backfill(candidates []string, topic string, limit int) []string {
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		seen[strings.ToLower(c)] = struct{}{}
	}
	for _, frame := range fallbackFrames {
		if len(candidates) >= limit {
			break
		}
		line := interpolate(frame, topic, "")
		key := strings.ToLower(line)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, line)
	}
	return candidates
}

func fallbackTopic(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > fallbackTopicRunes {
		runes = runes[:fallbackTopicRunes]
	}
	return strings.TrimSpace(string(runes))
}
