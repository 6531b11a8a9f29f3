// internal/workers/ai-conversation/enrich-context/config.go
package enrichcontext

import "time"

type Config struct {
	Timeout     time.Duration
	CacheTTL    time.Duration
	CachePrefix string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		CacheTTL:    5 * time.Minute,
		CachePrefix: "ai:enrich:",
	}
}
