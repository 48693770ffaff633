// internal/workers/headline/normalize-input/config.go
package normalizeinput

type Config struct {
	TopicMaxLength int
}

func LoadConfig() *Config {
	return &Config{
		TopicMaxLength: 100,
	}
}
