// internal/workers/headline/build-envelope/handler.go
package buildenvelope

import (
	"encoding/json"
	"errors"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/common/validation"
	"headline-agent/internal/models"

	"github.com/google/uuid"
)

const TaskType = "build-envelope"

// Handler turns pipeline output, or a pipeline failure, into the outbound
// JSON-RPC envelope. Every identifier it embeds is minted per call.
type Handler struct {
	logger logger.Logger
	now    func() time.Time
	newID  func() string
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{
		logger: log.With(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock replaces the time source for status timestamps.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// WithIDSource replaces the identifier generator.
func (h *Handler) WithIDSource(newID func() string) *Handler {
	h.newID = newID
	return h
}

// Build returns the success envelope for formatted. requestID is echoed
// verbatim; nil becomes null.
func (h *Handler) Build(requestID json.RawMessage, formatted *models.FormattedResult) (*models.OutboundEnvelope, error) {
	if formatted == nil {
		return nil, apperrors.NewEnvelopeConstructionError(errors.New("no formatted result"))
	}

	textPart := models.Part{Kind: models.PartKindText, Text: formatted.Text}

	env := &models.OutboundEnvelope{
		JSONRPC: models.JSONRPCVersion,
		ID:      requestID,
		Result: &models.TaskResult{
			ID:        h.newID(),
			ContextID: h.newID(),
			Status: models.TaskStatus{
				State:     models.TaskStateDone,
				Timestamp: h.now().UTC().Format(models.TimestampLayout),
				Message: &models.Message{
					MessageID: h.newID(),
					Role:      models.RoleAgent,
					Parts:     []models.Part{textPart},
					Kind:      models.KindMessage,
				},
			},
			Artifacts: []models.Artifact{
				{
					ArtifactID: h.newID(),
					Name:       models.ArtifactText,
					Parts:      []models.Part{textPart},
				},
				{
					ArtifactID: h.newID(),
					Name:       models.ArtifactResults,
					Parts:      []models.Part{{Kind: models.PartKindData, Data: formatted.Data}},
				},
			},
		},
	}

	if err := h.check(env); err != nil {
		h.logger.Error("envelope failed validation", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, apperrors.NewEnvelopeConstructionError(err)
	}
	return env, nil
}

// BuildError returns the error envelope for err. It never fails.
func (h *Handler) BuildError(requestID json.RawMessage, err error) *models.OutboundEnvelope {
	stdErr := apperrors.Normalize(err)
	if stdErr == nil {
		stdErr = apperrors.NewInternalError(errors.New("unknown failure"))
	}

	rpcErr := &models.RPCError{
		Code:    stdErr.RPCCode(),
		Message: stdErr.Message,
	}
	if stdErr.Details != "" {
		rpcErr.Data = stdErr.Details
	}

	return &models.OutboundEnvelope{
		JSONRPC: models.JSONRPCVersion,
		ID:      requestID,
		Error:   rpcErr,
	}
}

func (h *Handler) check(env *models.OutboundEnvelope) error {
	result, err := validation.ValidateEnvelope(env)
	if err != nil {
		return err
	}
	return result.Err()
}
