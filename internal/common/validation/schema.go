// internal/common/validation/schema.go
package validation

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/outbound-envelope.json
var outboundEnvelopeSchema []byte

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var (
	envelopeOnce   sync.Once
	envelopeSchema *gojsonschema.Schema
	envelopeErr    error
)

func loadEnvelopeSchema() (*gojsonschema.Schema, error) {
	envelopeOnce.Do(func() {
		envelopeSchema, envelopeErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(outboundEnvelopeSchema))
	})
	return envelopeSchema, envelopeErr
}

// ValidateEnvelope checks a Go value (typically *models.OutboundEnvelope)
// against the outbound envelope schema.
func ValidateEnvelope(envelope interface{}) (*ValidationResult, error) {
	return validate(gojsonschema.NewGoLoader(envelope))
}

// ValidateEnvelopeJSON checks raw JSON against the outbound envelope schema.
func ValidateEnvelopeJSON(doc []byte) (*ValidationResult, error) {
	return validate(gojsonschema.NewBytesLoader(doc))
}

func validate(document gojsonschema.JSONLoader) (*ValidationResult, error) {
	schema, err := loadEnvelopeSchema()
	if err != nil {
		return nil, fmt.Errorf("load envelope schema: %w", err)
	}

	result, err := schema.Validate(document)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

// GetErrorMessages returns all error messages as strings
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Err folds an invalid result into a single error, or nil when valid.
func (vr *ValidationResult) Err() error {
	if vr.Valid {
		return nil
	}
	return fmt.Errorf("envelope failed schema validation: %s", strings.Join(vr.GetErrorMessages(), "; "))
}

// HasErrors checks if there are errors for a specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
