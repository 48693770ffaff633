// internal/workers/headline/generate-candidates/producer.go
package generatecandidates

import (
	"context"
	"regexp"
	"strings"
)

// Producer returns headline candidates for a request. It may return fewer or
// more than req.Count lines; the handler normalizes the list.
type Producer interface {
	Produce(ctx context.Context, req ProduceRequest) ([]string, error)
	Name() string
}

const defaultAudience = "Professionals"

type category struct {
	name   string
	match  func(lower string) bool
	frames []string
}

func keywordMatcher(words ...string) func(string) bool {
	pattern := regexp.MustCompile(`\b(?:` + strings.Join(words, "|") + `)\b`)
	return pattern.MatchString
}

// Order matters: the first matching category wins and general always matches.
var categories = []category{
	{
		name: "achievement",
		match: keywordMatcher("completed", "achieved", "earned", "certified", "certification",
			"graduated", "promoted", "promotion", "milestone", "award", "won", "accomplished"),
		frames: []string{
			"🎉 Just Completed: {topic}",
			"Milestone Unlocked: {topic}",
			"How I Got Here: {topic}",
			"{topic}: Lessons From the Journey",
			"Proud Moment: {topic}",
		},
	},
	{
		name: "news",
		match: keywordMatcher("future", "trends?", "industry", "analysis", "report", "study",
			"research", "data", "market", "insights", "transforming", "changing", "news", "ai"),
		frames: []string{
			"{topic}: What You Need to Know",
			"Why {topic} Matters for {audience}",
			"The Big Shift: {topic}",
			"{topic}: Key Takeaways and What Comes Next",
			"Breaking Down {topic}",
		},
	},
	{
		name: "excitement",
		match: keywordMatcher("excited", "thrilled", "launch", "launched", "launching",
			"announce", "announcing", "new", "finally", "proud", "hiring"),
		frames: []string{
			"🚀 Big News: {topic}",
			"Excited to Share: {topic}",
			"It's Finally Here: {topic}",
			"{topic}: Here's Why We're Thrilled",
			"Announcing {topic}",
		},
	},
	{
		name:  "general",
		match: func(string) bool { return true },
		frames: []string{
			"{topic}: What You Need to Know",
			"My Take on {topic}",
			"{topic}: Insights for {audience}",
			"Let's Talk About {topic}",
			"What {topic} Taught Me",
		},
	},
}

// TemplateProducer fills fixed frames picked by keyword category. It is
// deterministic and never fails.
type TemplateProducer struct{}

func NewTemplateProducer() *TemplateProducer { return &TemplateProducer{} }

func (p *TemplateProducer) Name() string { return "template" }

func (p *TemplateProducer) Produce(ctx context.Context, req ProduceRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat := categorize(req.Text)
	out := make([]string, 0, len(cat.frames))
	for _, frame := range cat.frames {
		out = append(out, interpolate(frame, req.Topic, req.Audience))
	}
	return out, nil
}

func categorize(text string) category {
	lower := strings.ToLower(text)
	for _, c := range categories {
		if c.match(lower) {
			return c
		}
	}
	return categories[len(categories)-1]
}

func interpolate(frame, topic, audience string) string {
	if strings.TrimSpace(audience) == "" {
		audience = defaultAudience
	}
	return strings.NewReplacer("{topic}", topic, "{audience}", audience).Replace(frame)
}
