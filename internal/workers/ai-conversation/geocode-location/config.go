// internal/workers/ai-conversation/geocode-location/config.go
package geocodelocation

import "time"

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL:   "https://nominatim.openstreetmap.org",
		UserAgent: "AssistantWorkers/1.0",
		Timeout:   5 * time.Second,
	}
}
