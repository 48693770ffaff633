// internal/workers/headline/generate-candidates/models.go
package generatecandidates

import "headline-agent/internal/models"

type Input struct {
	Request models.GenerationRequest
	Topic   string
}

type Output struct {
	Candidates []string `json:"candidates"`
	Producer   string   `json:"producer"`
	// Backfilled counts the fallback frames appended to reach the target count.
	Backfilled int `json:"backfilled"`
}

// ProduceRequest is what a Producer sees for one generation.
type ProduceRequest struct {
	Text     string
	Topic    string
	Audience string
	Tone     models.Tone
	Count    int
}
