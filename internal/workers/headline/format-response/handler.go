// internal/workers/headline/format-response/handler.go
package formatresponse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/models"
)

const TaskType = "format-response"

type Handler struct {
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for generatedAt.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*models.FormattedResult, error) {
	if len(input.Candidates) == 0 {
		return nil, apperrors.NewInternalError(errors.New("format-response: no candidates"))
	}

	all := make([]string, len(input.Candidates))
	copy(all, input.Candidates)

	return &models.FormattedResult{
		Text: RenderText(all, input.Best),
		Data: models.HeadlineResults{
			BestHeadline: input.Best,
			AllHeadlines: all,
			Topic:        input.Topic,
			GeneratedAt:  h.now().UTC().Format(models.TimestampLayout),
		},
	}, nil
}

// RenderText builds the human-readable option list.
func RenderText(candidates []string, best string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are %d LinkedIn headline options:\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, c)
	}
	sb.WriteString("💡 Recommended: ")
	sb.WriteString(best)
	return sb.String()
}
