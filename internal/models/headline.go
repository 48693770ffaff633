// internal/models/headline.go
package models

import "strings"

// CandidateCount is the number of headlines every successful run returns.
const CandidateCount = 5

// TimestampLayout renders every outbound timestamp: ISO-8601, UTC, milliseconds.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Tone of the generated headlines.
type Tone string

const (
	ToneProfessional  Tone = "professional"
	ToneCasual        Tone = "casual"
	ToneInspirational Tone = "inspirational"
	ToneEducational   Tone = "educational"
)

// DefaultTone is used when the caller names none.
const DefaultTone = ToneProfessional

var tones = map[string]Tone{
	string(ToneProfessional):  ToneProfessional,
	string(ToneCasual):        ToneCasual,
	string(ToneInspirational): ToneInspirational,
	string(ToneEducational):   ToneEducational,
}

// ParseTone matches case-insensitively. An empty string yields DefaultTone.
func ParseTone(s string) (Tone, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTone, true
	}
	t, ok := tones[s]
	return t, ok
}

// GenerationRequest is the canonical task input recovered from any inbound shape.
// Text is always cleaned content, never the raw envelope.
type GenerationRequest struct {
	Text           string `json:"text"`
	TargetAudience string `json:"targetAudience,omitempty"`
	Tone           Tone   `json:"tone"`
}

// HeadlineSet holds the ranked candidates. Best is always Candidates[0].
type HeadlineSet struct {
	Candidates []string `json:"candidates"`
	Best       string   `json:"best"`
}

// HeadlineResults is the machine-readable data artifact.
type HeadlineResults struct {
	BestHeadline string   `json:"bestHeadline"`
	AllHeadlines []string `json:"allHeadlines"`
	Topic        string   `json:"topic"`
	GeneratedAt  string   `json:"generatedAt"`
}

// FormattedResult is what the format stage hands to the envelope builder.
type FormattedResult struct {
	Text string          `json:"text"`
	Data HeadlineResults `json:"data"`
}
