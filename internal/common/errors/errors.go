// Package errors provides the coded error taxonomy shared by the webhook,
// the pipeline and the job adapter, plus its JSON-RPC and BPMN mappings.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMalformedBody        ErrorCode = "MALFORMED_BODY"
	ErrCodeInvalidProtocol      ErrorCode = "INVALID_PROTOCOL"
	ErrCodeInvalidParams        ErrorCode = "INVALID_PARAMS"
	ErrCodeProducerFailure      ErrorCode = "PRODUCER_FAILURE"
	ErrCodeProducerTimeout      ErrorCode = "PRODUCER_TIMEOUT"
	ErrCodeEnvelopeConstruction ErrorCode = "ENVELOPE_CONSTRUCTION_FAILURE"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// JSON-RPC 2.0 error codes.
const (
	RPCInvalidRequest  = -32600
	RPCMethodNotFound  = -32601
	RPCInvalidParams   = -32602
	RPCInternalError   = -32603
	RPCProducerTimeout = -32001
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// RPCCode returns the JSON-RPC error code for the error's category.
func (e *StandardError) RPCCode() int {
	return e.Code.RPCCode()
}

// HTTPStatus returns the HTTP status the webhook answers with.
func (e *StandardError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

func (c ErrorCode) RPCCode() int {
	switch c {
	case ErrCodeMalformedBody, ErrCodeInvalidProtocol:
		return RPCInvalidRequest
	case ErrCodeInvalidParams:
		return RPCInvalidParams
	case ErrCodeProducerTimeout:
		return RPCProducerTimeout
	default:
		return RPCInternalError
	}
}

func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeMalformedBody, ErrCodeInvalidProtocol, ErrCodeInvalidParams:
		return http.StatusBadRequest
	case ErrCodeProducerTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMalformedBodyError reports a body that could not be read or parsed.
func NewMalformedBodyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedBody,
		Message:   "Invalid Request: malformed body",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedBodyReadError wraps a transport read failure.
func NewMalformedBodyReadError(err error) *StandardError {
	e := NewMalformedBodyError(fmt.Sprintf("read body: %v", err))
	e.cause = err
	return e
}

// NewInvalidProtocolError reports a body that is not a JSON-RPC 2.0 request.
func NewInvalidProtocolError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProtocol,
		Message:   "Invalid Request: " + details,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParamsError carries one human-readable reason per failure case.
func NewInvalidParamsError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParams,
		Message:   "Invalid params: " + reason,
		Details:   reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProducerFailureError wraps a producer error or unusable producer output.
func NewProducerFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProducerFailure,
		Message:   "Internal error: headline generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewProducerTimeoutError reports a producer call that exceeded its bounded wait.
func NewProducerTimeoutError(timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeProducerTimeout,
		Message:   "Headline generation timed out",
		Details:   fmt.Sprintf("producer did not answer within %s", timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnvelopeConstructionError reports an outbound envelope that could not be built or validated.
func NewEnvelopeConstructionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnvelopeConstruction,
		Message:   "Internal error: response envelope construction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps anything that is not already a StandardError.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the BPMN error codes thrown to the engine.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMalformedBody:        "HEADLINE_MALFORMED_REQUEST",
	ErrCodeInvalidProtocol:      "HEADLINE_MALFORMED_REQUEST",
	ErrCodeInvalidParams:        "HEADLINE_INVALID_PARAMS",
	ErrCodeProducerFailure:      "HEADLINE_GENERATION_FAILED",
	ErrCodeProducerTimeout:      "HEADLINE_GENERATION_TIMEOUT",
	ErrCodeEnvelopeConstruction: "HEADLINE_ENVELOPE_FAILED",
	ErrCodeInternal:             "HEADLINE_INTERNAL_ERROR",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeProducerFailure:
		return 2
	case ErrCodeProducerTimeout:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"rpcCode":           stdErr.RPCCode(),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// Normalize maps any error onto a StandardError. Context deadline errors
// that escaped a stage are reported as internal errors.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "MALFORMED") || strings.Contains(codeStr, "PROTOCOL"):
		return "PROTOCOL"
	case strings.Contains(codeStr, "PARAMS"):
		return "VALIDATION"
	case strings.Contains(codeStr, "PRODUCER"):
		return "GENERATION"
	case strings.Contains(codeStr, "ENVELOPE"):
		return "ENVELOPE"
	default:
		return "OTHER"
	}
}
