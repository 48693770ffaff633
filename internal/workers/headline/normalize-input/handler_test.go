// internal/workers/headline/normalize-input/handler_test.go
package normalizeinput

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"
	"headline-agent/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(&Config{TopicMaxLength: 100}, logger.NewTestLogger(t))
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.StandardError {
	t.Helper()
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	require.Equal(t, code, stdErr.Code, "error: %v", err)
	return stdErr
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

// multiSource offers several capabilities at once.
type multiSource struct {
	parsed interface{}
	stream io.Reader
}

func (m multiSource) ParsedBody() (interface{}, bool) { return m.parsed, m.parsed != nil }
func (m multiSource) BodyReader() (io.Reader, bool)    { return m.stream, m.stream != nil }

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		validateOutput func(t *testing.T, out *Output)
	}{
		{
			name: "a2a message with instruction prefix",
			body: `{"jsonrpc":"2.0","id":"t-1","method":"message/send","params":{"message":{"kind":"message","role":"user","parts":[{"kind":"text","text":"generate a headline for this post: The future of AI in healthcare is transforming patient care."}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeA2A, out.Mode)
				assert.JSONEq(t, `"t-1"`, string(out.RequestID))
				assert.Equal(t, "message/send", out.Method)
				assert.Equal(t, "The future of AI in healthcare is transforming patient care.", out.Request.Text)
				assert.Equal(t, "The future of AI in healthcare is transforming patient care", out.Topic)
				assert.Equal(t, models.ToneProfessional, out.Request.Tone)
			},
		},
		{
			name: "numeric id keeps its literal",
			body: `{"jsonrpc":"2.0","id":12345678901234567890,"method":"message/send","params":{"message":{"parts":[{"kind":"text","text":"Hello"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, "12345678901234567890", string(out.RequestID))
			},
		},
		{
			name: "fractional id keeps its literal",
			body: `{"jsonrpc":"2.0","id":1.50,"method":"message/send","params":{"message":{"parts":[{"kind":"text","text":"Hello"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, "1.50", string(out.RequestID))
			},
		},
		{
			name: "string id keeps escapes and html characters",
			body: `{"jsonrpc":"2.0","id":"a<b>&c\u0041","method":"message/send","params":{"message":{"parts":[{"kind":"text","text":"Hello"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, `"a<b>&c\u0041"`, string(out.RequestID))
			},
		},
		{
			name: "null and missing id",
			body: `{"jsonrpc":"2.0","id":null,"method":"message/send","params":{"message":{"parts":[{"kind":"text","text":"Hello"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Nil(t, out.RequestID)
			},
		},
		{
			name: "first text part wins and data part carries options",
			body: `{"jsonrpc":"2.0","id":7,"method":"message/send","params":{"message":{"taskId":"task-9","messageId":"msg-3","parts":[{"kind":"data","data":{"targetAudience":" CTOs ","tone":"Casual"}},{"kind":"text","text":"<b>First</b> post"},{"kind":"text","text":"Second"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, "First post", out.Request.Text)
				assert.Equal(t, "CTOs", out.Request.TargetAudience)
				assert.Equal(t, models.ToneCasual, out.Request.Tone)
				assert.Equal(t, "task-9", out.TaskID)
				assert.Equal(t, "msg-3", out.MessageID)
			},
		},
		{
			name: "method is not validated",
			body: `{"jsonrpc":"2.0","id":"x","method":"tasks/send","params":{"message":{"parts":[{"kind":"text","text":"Hello"}]}}}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, "tasks/send", out.Method)
			},
		},
		{
			name: "object with text field",
			body: `{"text":"We just closed our Series A!","targetAudience":"founders","tone":"inspirational"}`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeObject, out.Mode)
				assert.Equal(t, "We just closed our Series A!", out.Request.Text)
				assert.Equal(t, "founders", out.Request.TargetAudience)
				assert.Equal(t, models.ToneInspirational, out.Request.Tone)
				assert.Nil(t, out.RequestID)
			},
		},
		{
			name: "json string body",
			body: `"Hiring three engineers"`,
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeText, out.Mode)
				assert.Equal(t, "Hiring three engineers", out.Request.Text)
			},
		},
		{
			name: "bare text starting with a bracket",
			body: "[Hiring] Excited to announce we are growing our data team",
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeText, out.Mode)
				assert.Equal(t, "[Hiring] Excited to announce we are growing our data team", out.Request.Text)
				assert.Nil(t, out.RequestID)
			},
		},
		{
			name: "bare text starting with a brace",
			body: "{Draft} Excited to announce our new office",
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeText, out.Mode)
				assert.Equal(t, "{Draft} Excited to announce our new office", out.Request.Text)
			},
		},
		{
			name: "bare text body",
			body: "  We launched a <em>new</em> product today.  ",
			validateOutput: func(t *testing.T, out *Output) {
				assert.Equal(t, ModeText, out.Mode)
				assert.Equal(t, "We launched a new product today.", out.Request.Text)
				assert.Equal(t, "stream", out.Extractor)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			out, err := h.Execute(context.Background(), FromBytes([]byte(tt.body)))
			require.NoError(t, err)
			require.NotNil(t, out)
			tt.validateOutput(t, out)
		})
	}
}

// ==========================
// Validation Tests
// ==========================

func TestHandler_Execute_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		code       apperrors.ErrorCode
		reason     string
		expectedID string
	}{
		{"empty body", "   ", apperrors.ErrCodeMalformedBody, "empty body", ""},
		{"broken json object", `{"jsonrpc":"2.0",`, apperrors.ErrCodeMalformedBody, "invalid JSON", ""},
		{"truncated envelope", `{"jsonrpc":"2.0","id":5,`, apperrors.ErrCodeMalformedBody, "invalid JSON", ""},
		{"broken array", `[{"jsonrpc":"2.0"`, apperrors.ErrCodeMalformedBody, "invalid JSON", ""},
		{"trailing data", `{"text":"a"}}`, apperrors.ErrCodeMalformedBody, "trailing data", ""},
		{"invalid utf8", "\xff\xfe\xfd", apperrors.ErrCodeMalformedBody, "UTF-8", ""},
		{"jsonrpc absent", `{"id":"b-1","method":"message/send","params":{}}`, apperrors.ErrCodeInvalidProtocol, "jsonrpc", `"b-1"`},
		{"wrong version", `{"jsonrpc":"1.0","id":3,"method":"message/send"}`, apperrors.ErrCodeInvalidProtocol, `"2.0"`, "3"},
		{"numeric version", `{"jsonrpc":2.0,"id":3}`, apperrors.ErrCodeInvalidProtocol, `"2.0"`, "3"},
		{"batch", `[{"jsonrpc":"2.0"}]`, apperrors.ErrCodeInvalidProtocol, "batch", ""},
		{"scalar", `42`, apperrors.ErrCodeInvalidProtocol, "JSON object", ""},
		{"missing params", `{"jsonrpc":"2.0","id":1,"method":"message/send"}`, apperrors.ErrCodeInvalidParams, "params.message is required", "1"},
		{"missing message", `{"jsonrpc":"2.0","id":1,"params":{}}`, apperrors.ErrCodeInvalidParams, "params.message is required", "1"},
		{"missing parts", `{"jsonrpc":"2.0","id":1,"params":{"message":{}}}`, apperrors.ErrCodeInvalidParams, "parts is required", "1"},
		{"parts not array", `{"jsonrpc":"2.0","id":1,"params":{"message":{"parts":"hi"}}}`, apperrors.ErrCodeInvalidParams, "must be an array", "1"},
		{"empty parts", `{"jsonrpc":"2.0","id":1,"params":{"message":{"parts":[]}}}`, apperrors.ErrCodeInvalidParams, "must not be empty", "1"},
		{"only data part", `{"jsonrpc":"2.0","id":1,"params":{"message":{"parts":[{"kind":"data","data":{"a":1}}]}}}`, apperrors.ErrCodeInvalidParams, "no text part", "1"},
		{"text part without text", `{"jsonrpc":"2.0","id":1,"params":{"message":{"parts":[{"kind":"text"}]}}}`, apperrors.ErrCodeInvalidParams, "string text field", "1"},
		{"empty after cleaning", `{"jsonrpc":"2.0","id":1,"params":{"message":{"parts":[{"kind":"text","text":"<p>&nbsp;</p>"}]}}}`, apperrors.ErrCodeInvalidParams, "empty after cleaning", "1"},
		{"unknown tone", `{"text":"hello","tone":"sarcastic"}`, apperrors.ErrCodeInvalidParams, "unsupported tone", ""},
		{"non-string text", `{"text":42}`, apperrors.ErrCodeInvalidParams, "text must be a string", ""},
		{"object without text or jsonrpc", `{"prompt":"hello"}`, apperrors.ErrCodeInvalidProtocol, "jsonrpc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			out, err := h.Execute(context.Background(), FromBytes([]byte(tt.body)))
			stdErr := requireCode(t, err, tt.code)
			assert.Contains(t, stdErr.Details, tt.reason)

			if tt.expectedID == "" {
				if out != nil {
					assert.Nil(t, out.RequestID)
				}
				return
			}
			require.NotNil(t, out)
			assert.Equal(t, tt.expectedID, string(out.RequestID))
		})
	}
}

// ==========================
// Transport Extraction Tests
// ==========================

func TestHandler_Execute_Sources(t *testing.T) {
	const body = `{"jsonrpc":"2.0","id":"s-1","method":"message/send","params":{"message":{"parts":[{"kind":"text","text":"Launch day"}]}}}`

	t.Run("http request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/linkedin-headline", strings.NewReader(body))
		out, err := newTestHandler(t).Execute(context.Background(), FromRequest(req))
		require.NoError(t, err)
		assert.Equal(t, "stream", out.Extractor)
		assert.Equal(t, `"s-1"`, string(out.RequestID))
	})

	t.Run("parsed map", func(t *testing.T) {
		value := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      float64(9),
			"params": map[string]interface{}{
				"message": map[string]interface{}{
					"parts": []interface{}{map[string]interface{}{"kind": "text", "text": "Launch day"}},
				},
			},
		}
		out, err := newTestHandler(t).Execute(context.Background(), FromValue(value))
		require.NoError(t, err)
		assert.Equal(t, "parsed", out.Extractor)
		assert.Equal(t, "9", string(out.RequestID))
		assert.Equal(t, "Launch day", out.Request.Text)
	})

	t.Run("parsed string", func(t *testing.T) {
		out, err := newTestHandler(t).Execute(context.Background(), FromValue("Launch day"))
		require.NoError(t, err)
		assert.Equal(t, ModeText, out.Mode)
	})

	t.Run("parsed raw bytes", func(t *testing.T) {
		out, err := newTestHandler(t).Execute(context.Background(), FromValue([]byte(body)))
		require.NoError(t, err)
		assert.Equal(t, ModeA2A, out.Mode)
	})

	t.Run("events", func(t *testing.T) {
		ch := make(chan BodyEvent, 3)
		ch <- BodyEvent{Data: []byte(body[:20])}
		ch <- BodyEvent{Data: []byte(body[20:])}
		close(ch)

		out, err := newTestHandler(t).Execute(context.Background(), FromEvents(ch))
		require.NoError(t, err)
		assert.Equal(t, "events", out.Extractor)
		assert.Equal(t, `"s-1"`, string(out.RequestID))
	})

	t.Run("event error is malformed", func(t *testing.T) {
		ch := make(chan BodyEvent, 2)
		ch <- BodyEvent{Data: []byte(`{"jsonrpc"`)}
		ch <- BodyEvent{Err: errors.New("stream aborted")}
		close(ch)

		_, err := newTestHandler(t).Execute(context.Background(), FromEvents(ch))
		stdErr := requireCode(t, err, apperrors.ErrCodeMalformedBody)
		assert.Contains(t, stdErr.Details, "stream aborted")
	})

	t.Run("event stream honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := newTestHandler(t).Execute(ctx, FromEvents(make(chan BodyEvent)))
		requireCode(t, err, apperrors.ErrCodeMalformedBody)
	})

	t.Run("stream read error is malformed", func(t *testing.T) {
		_, err := newTestHandler(t).Execute(context.Background(), multiSource{stream: failingReader{}})
		stdErr := requireCode(t, err, apperrors.ErrCodeMalformedBody)
		assert.Contains(t, stdErr.Details, "connection reset")
	})

	t.Run("unparseable parsed body falls through to stream", func(t *testing.T) {
		src := multiSource{parsed: []byte("{broken"), stream: strings.NewReader(body)}
		out, err := newTestHandler(t).Execute(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "stream", out.Extractor)
	})

	t.Run("parsed body wins over stream", func(t *testing.T) {
		src := multiSource{parsed: "From parsed", stream: strings.NewReader(body)}
		out, err := newTestHandler(t).Execute(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "From parsed", out.Request.Text)
	})

	t.Run("no capability at all", func(t *testing.T) {
		_, err := newTestHandler(t).Execute(context.Background(), struct{}{})
		stdErr := requireCode(t, err, apperrors.ErrCodeMalformedBody)
		assert.Contains(t, stdErr.Details, "no body")
	})

	t.Run("empty http body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/linkedin-headline", nil)
		_, err := newTestHandler(t).Execute(context.Background(), FromRequest(req))
		requireCode(t, err, apperrors.ErrCodeMalformedBody)
	})
}
