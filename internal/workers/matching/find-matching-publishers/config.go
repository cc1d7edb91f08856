// internal/workers/matching/find-matching-publishers/config.go
package findmatchingpublishers

import "time"

type Config struct {
	Timeout       time.Duration
	CacheTTL      time.Duration
	CachePrefix   string
	DefaultMarket string
	MaxPoolSize   int
	Concurrency   int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		CacheTTL:      5 * time.Minute,
		CachePrefix:   "publishers",
		DefaultMarket: "sf",
		MaxPoolSize:   500,
		Concurrency:   8,
	}
}
