// internal/workers/ai-conversation/fetch-weather/config.go
package fetchweather

import "time"

type Config struct {
	BaseURL string
	APIKey  string
	Units   string
	Lang    string
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		BaseURL: "http://api.openweathermap.org",
		Units:   "metric",
		Lang:    "ru",
		Timeout: 5 * time.Second,
	}
}
