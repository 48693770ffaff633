// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validResult = `{
  "jsonrpc": "2.0",
  "id": 7,
  "result": {
    "id": "t-1",
    "contextId": "c-1",
    "status": {
      "state": "completed",
      "timestamp": "2025-01-02T03:04:05.678Z",
      "message": {"messageId": "m-1", "role": "agent", "kind": "message", "parts": [{"kind": "text", "text": "hi"}]}
    },
    "artifacts": [
      {"artifactId": "a-1", "name": "linkedinHeadlineResponse", "parts": [{"kind": "text", "text": "hi"}]},
      {"artifactId": "a-2", "name": "HeadlineResults", "parts": [{"kind": "data", "data": {"bestHeadline": "hi"}}]}
    ]
  }
}`

func TestValidateEnvelopeJSON(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantValid bool
	}{
		{name: "success envelope", doc: validResult, wantValid: true},
		{
			name:      "error envelope with null id",
			doc:       `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid Request"}}`,
			wantValid: true,
		},
		{
			name:      "error envelope with data",
			doc:       `{"jsonrpc":"2.0","id":"abc","error":{"code":-32602,"message":"Invalid params","data":"parts empty"}}`,
			wantValid: true,
		},
		{
			name: "both result and error",
			doc: `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"x"},
				"result":{"id":"t","contextId":"c","status":{"state":"completed","timestamp":"2025-01-02T03:04:05Z"},"artifacts":[]}}`,
			wantValid: false,
		},
		{
			name:      "neither result nor error",
			doc:       `{"jsonrpc":"2.0","id":1}`,
			wantValid: false,
		},
		{
			name:      "wrong version",
			doc:       `{"jsonrpc":"1.0","id":1,"error":{"code":-32603,"message":"x"}}`,
			wantValid: false,
		},
		{
			name:      "missing id",
			doc:       `{"jsonrpc":"2.0","error":{"code":-32603,"message":"x"}}`,
			wantValid: false,
		},
		{
			name:      "object id",
			doc:       `{"jsonrpc":"2.0","id":{"a":1},"error":{"code":-32603,"message":"x"}}`,
			wantValid: false,
		},
		{
			name: "empty text part",
			doc: `{"jsonrpc":"2.0","id":1,"result":{"id":"t","contextId":"c",
				"status":{"state":"completed","timestamp":"2025-01-02T03:04:05Z"},
				"artifacts":[{"artifactId":"a","name":"n","parts":[{"kind":"text","text":""}]}]}}`,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateEnvelopeJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid, "errors: %v", result.GetErrorMessages())
			if tt.wantValid {
				assert.NoError(t, result.Err())
			} else {
				assert.Error(t, result.Err())
			}
		})
	}
}

func TestValidateEnvelope_GoValue(t *testing.T) {
	env := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "req-1",
		"error":   map[string]interface{}{"code": -32603, "message": "Internal error"},
	}
	result, err := ValidateEnvelope(env)
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateEnvelopeJSON_NotJSON(t *testing.T) {
	_, err := ValidateEnvelopeJSON([]byte("{not json"))
	assert.Error(t, err)
}
