// internal/workers/headline/format-response/handler_test.go
package formatresponse

import (
	"context"
	"testing"
	"time"

	apperrors "headline-agent/internal/common/errors"
	"headline-agent/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 891000000, time.FixedZone("CET", 3600))
	h := NewHandler(logger.NewTestLogger(t)).WithClock(func() time.Time { return fixed })

	out, err := h.Execute(context.Background(), &Input{
		Candidates: []string{"One", "Two", "Three"},
		Best:       "One",
		Topic:      "Remote work",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"Here are 3 LinkedIn headline options:\n\n1. One\n\n2. Two\n\n3. Three\n\n💡 Recommended: One",
		out.Text)
	assert.Equal(t, "One", out.Data.BestHeadline)
	assert.Equal(t, []string{"One", "Two", "Three"}, out.Data.AllHeadlines)
	assert.Equal(t, "Remote work", out.Data.Topic)
	assert.Equal(t, "2025-03-04T04:06:07.891Z", out.Data.GeneratedAt)
}

func TestHandler_Execute_NoCandidates(t *testing.T) {
	_, err := NewHandler(logger.NewNoOpLogger()).Execute(context.Background(), &Input{})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInternal))
}

func TestRenderText_FiveCandidates(t *testing.T) {
	text := RenderText([]string{"a", "b", "c", "d", "e"}, "a")
	assert.Contains(t, text, "Here are 5 LinkedIn headline options:")
	assert.Contains(t, text, "\n\n5. e\n\n💡 Recommended: a")
}
