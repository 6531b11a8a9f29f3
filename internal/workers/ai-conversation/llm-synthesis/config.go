// internal/workers/ai-conversation/llm-synthesis/config.go
package llmsynthesis

import "time"

type Config struct {
	Timeout  time.Duration
	Yandex   YandexConfig
	GigaChat GigaChatConfig
}

type YandexConfig struct {
	BaseURL      string
	OperationURL string
	FolderID     string
	APIKey       string
	AuthToken    string
	Model        string
	Temperature  float64
	MaxTokens    int
	PollInterval time.Duration
	Timeout      time.Duration
}

func (c YandexConfig) Configured() bool {
	return c.FolderID != "" && (c.APIKey != "" || c.AuthToken != "")
}

type GigaChatConfig struct {
	BaseURL       string
	AuthURL       string
	Credentials   string
	Scope         string
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxReplyChars int
	InsecureTLS   bool
	Timeout       time.Duration
}

func (c GigaChatConfig) Configured() bool {
	return c.Credentials != ""
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 60 * time.Second,
		Yandex: YandexConfig{
			BaseURL:      "https://llm.api.cloud.yandex.net",
			OperationURL: "https://operation.api.cloud.yandex.net",
			Model:        "yandexgpt",
			Temperature:  0.5,
			MaxTokens:    2000,
			PollInterval: 5 * time.Second,
			Timeout:      60 * time.Second,
		},
		GigaChat: GigaChatConfig{
			BaseURL:       "https://gigachat.devices.sberbank.ru/api/v1",
			AuthURL:       "https://ngw.devices.sberbank.ru:9443/api/v2/oauth",
			Scope:         "GIGACHAT_API_PERS",
			Model:         "GigaChat",
			Temperature:   0.7,
			MaxTokens:     1024,
			MaxReplyChars: DefaultReplyLimit,
			InsecureTLS:   true,
			Timeout:       60 * time.Second,
		},
	}
}
