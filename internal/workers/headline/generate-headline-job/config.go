// internal/workers/headline/generate-headline-job/config.go
package generateheadlinejob

import "time"

type Config struct {
	// Timeout bounds one job including the Zeebe completion call.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
