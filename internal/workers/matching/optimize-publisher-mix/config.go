// internal/workers/matching/optimize-publisher-mix/config.go
package optimizepublishermix

import "time"

type Config struct {
	Timeout         time.Duration
	NotifyEventType string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         15 * time.Second,
		NotifyEventType: "mix.recommended",
	}
}
