// internal/workers/ai-conversation/handle-user-message/config.go
package handleusermessage

import "time"

type Config struct {
	// Timeout covers enrichment plus the model call.
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 90 * time.Second,
	}
}
