// internal/workers/ai-conversation/fetch-news-feed/config.go
package fetchnewsfeed

import "time"

type Feed struct {
	Name string
	URL  string
}

type Config struct {
	Feeds     []Feed
	MaxItems  int
	UserAgent string
	Timeout   time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Feeds: []Feed{
			{Name: "ria", URL: "https://ria.ru/export/rss2/archive/index.xml"},
			{Name: "tass", URL: "https://tass.ru/rss/v2.xml"},
			{Name: "interfax", URL: "https://www.interfax.ru/rss.asp"},
		},
		MaxItems:  5,
		UserAgent: "Mozilla/5.0",
		Timeout:   10 * time.Second,
	}
}
