// internal/workers/headline/select-best/handler.go
package selectbest

import (
	"context"
	"errors"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
)

const TaskType = "select-best"

type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
	}
}

// Execute picks the recommended headline. Candidates arrive in the
// producer's preference order, so the first one wins.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Candidates) == 0 {
		return nil, apperrors.NewInternalError(errors.New("select-best: no candidates"))
	}

	candidates := make([]string, len(input.Candidates))
	copy(candidates, input.Candidates)

	return &Output{
		Candidates: candidates,
		Best:       candidates[0],
	}, nil
}
