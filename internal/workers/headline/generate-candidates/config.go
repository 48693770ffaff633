// internal/workers/headline/generate-candidates/config.go
package generatecandidates

import (
	"time"

	"headline-agent/internal/models"
)

type Config struct {
	Count   int
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Count:   models.CandidateCount,
		Timeout: 30 * time.Second,
	}
}
