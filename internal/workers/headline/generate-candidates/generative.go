// internal/workers/headline/generate-candidates/generative.go
package generatecandidates

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"headline-agent/internal/common/llm"
)

// GenerativeProducer asks a text generator for headlines and splits the
// free-text answer into lines.
type GenerativeProducer struct {
	generator    llm.TextGenerator
	systemPrompt string
}

func NewGenerativeProducer(generator llm.TextGenerator, systemPrompt string) *GenerativeProducer {
	return &GenerativeProducer{generator: generator, systemPrompt: systemPrompt}
}

func (p *GenerativeProducer) Name() string { return p.generator.Name() }

func (p *GenerativeProducer) Produce(ctx context.Context, req ProduceRequest) ([]string, error) {
	text, err := p.generator.GenerateText(ctx, llm.Request{
		System: p.systemPrompt,
		Prompt: buildPrompt(req),
	})
	if err != nil {
		return nil, err
	}
	return ParseLines(text), nil
}

func buildPrompt(req ProduceRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %d distinct LinkedIn headlines for the post below.\n", req.Count)
	fmt.Fprintf(&sb, "Tone: %s\n", req.Tone)
	if req.Audience != "" {
		fmt.Fprintf(&sb, "Target audience: %s\n", req.Audience)
	}
	if req.Topic != "" {
		fmt.Fprintf(&sb, "Topic: %s\n", req.Topic)
	}
	sb.WriteString("Return one headline per line, no numbering and no commentary.\n\nPost:\n")
	sb.WriteString(req.Text)
	return sb.String()
}

var (
	listMarker = regexp.MustCompile(`^(?:\d+[.)]|[-*•]|#+)\s+`)
	quoteChars = "\"'“”‘’`"
)

// ParseLines turns a completion into candidate lines: list markers, bold
// markers and wrapping quotes are removed, blank lines and lead-in lines
// ending in ':' are dropped.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = listMarker.ReplaceAllString(line, "")
		line = strings.ReplaceAll(line, "**", "")
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), quoteChars))
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		out = append(out, line)
	}
	return out
}
