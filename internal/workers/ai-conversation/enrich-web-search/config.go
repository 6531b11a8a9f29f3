// internal/workers/ai-conversation/enrich-web-search/config.go
package enrichwebsearch

import "time"

const (
	EngineDuckDuckGo = "duckduckgo"
	EngineMojeek     = "mojeek"
	EngineMetaGer    = "metager"
	EngineBrave      = "brave"
)

const (
	ModeAggregate = "aggregate"
	ModeInline    = "inline"
)

// EngineSettings configures one search engine. Engines are tried in the
// order they appear in Config.Engines.
type EngineSettings struct {
	Name      string
	Enabled   bool
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

type Config struct {
	Engines         []EngineSettings
	Mode            string
	MaxResults      int
	Parallel        bool
	RequestInterval time.Duration
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Engines: []EngineSettings{
			{Name: EngineDuckDuckGo, Enabled: true, BaseURL: "https://html.duckduckgo.com/html/", UserAgent: "Mozilla/5.0", Timeout: 5 * time.Second},
			{Name: EngineMojeek, Enabled: true, BaseURL: "https://api.mojeek.com/search", Timeout: 5 * time.Second},
			{Name: EngineMetaGer, Enabled: true, BaseURL: "https://metager.org/meta/meta.ger3", Timeout: 5 * time.Second},
			{Name: EngineBrave, Enabled: true, BaseURL: "https://api.search.brave.com/res/v1/web/search", Timeout: 5 * time.Second},
		},
		Mode:            ModeAggregate,
		MaxResults:      3,
		RequestInterval: 100 * time.Millisecond,
		Timeout:         30 * time.Second,
	}
}
