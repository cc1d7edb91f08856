// internal/workers/matching/analyze-publisher-mix/config.go
package analyzepublishermix

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
