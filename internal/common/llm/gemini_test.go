// internal/common/llm/gemini_test.go
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestResponseText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{name: "nil response", resp: nil, want: ""},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, want: ""},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}},
			want: "",
		},
		{
			name: "parts are joined in order",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "1. One\n"}, {Text: "2. Two"}}},
			}}},
			want: "1. One\n2. Two",
		},
		{
			name: "thought parts and nil parts are skipped",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "let me think about tone", Thought: true},
					nil,
					{Text: "Final headline"},
				}},
			}}},
			want: "Final headline",
		},
		{
			name: "only the first candidate counts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "first"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "second"}}}},
			}},
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, responseText(tt.resp))
		})
	}
}

func newGeminiServer(t *testing.T, handler http.HandlerFunc) *Gemini {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	g, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:      "test-key",
		BaseURL:     ts.URL + "/",
		Model:       "gemini-test",
		Temperature: 0.5,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	return g
}

func TestGemini_GenerateText(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantText   string
		wantErrIs  error
		wantErr    bool
		checkInput func(t *testing.T, r *http.Request, got map[string]interface{})
	}{
		{
			name:     "returns joined text without thoughts",
			status:   http.StatusOK,
			body:     `{"candidates":[{"content":{"role":"model","parts":[{"text":"planning","thought":true},{"text":"1. Alpha\n"},{"text":"2. Beta"}]}}]}`,
			wantText: "1. Alpha\n2. Beta",
			checkInput: func(t *testing.T, r *http.Request, got map[string]interface{}) {
				assert.Contains(t, r.URL.Path, "models/gemini-test:generateContent")
				assert.Contains(t, got, "contents")
				assert.Contains(t, got, "systemInstruction")
				cfg, ok := got["generationConfig"].(map[string]interface{})
				require.True(t, ok)
				assert.EqualValues(t, 100, cfg["maxOutputTokens"])
			},
		},
		{
			name:      "only thoughts is an empty completion",
			status:    http.StatusOK,
			body:      `{"candidates":[{"content":{"role":"model","parts":[{"text":"hmm","thought":true}]}}]}`,
			wantErrIs: ErrEmptyCompletion,
		},
		{
			name:      "no candidates is an empty completion",
			status:    http.StatusOK,
			body:      `{"candidates":[]}`,
			wantErrIs: ErrEmptyCompletion,
		},
		{
			name:    "api error is wrapped",
			status:  http.StatusBadRequest,
			body:    `{"error":{"code":400,"message":"model not found","status":"INVALID_ARGUMENT"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.checkInput != nil {
					var got map[string]interface{}
					require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
					tt.checkInput(t, r, got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			text, err := g.GenerateText(context.Background(), Request{
				System: "you are a copywriter",
				Prompt: "write five headlines",
			})

			switch {
			case tt.wantErrIs != nil:
				assert.ErrorIs(t, err, tt.wantErrIs)
			case tt.wantErr:
				require.Error(t, err)
				assert.True(t, strings.HasPrefix(err.Error(), "gemini: generate"), err.Error())
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, text)
			}
		})
	}
}

func TestGemini_GenerateText_ContextErrorPassesThrough(t *testing.T) {
	g := newGeminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.GenerateText(ctx, Request{Prompt: "slow"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Equal(t, "gemini", g.Name())
}
