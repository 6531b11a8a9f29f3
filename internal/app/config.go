// internal/app/config.go
package app

import (
	"assistant-workers/internal/common/config"

	ec "assistant-workers/internal/workers/ai-conversation/enrich-context"
	ews "assistant-workers/internal/workers/ai-conversation/enrich-web-search"
	fnf "assistant-workers/internal/workers/ai-conversation/fetch-news-feed"
	fw "assistant-workers/internal/workers/ai-conversation/fetch-weather"
	gl "assistant-workers/internal/workers/ai-conversation/geocode-location"
	llm "assistant-workers/internal/workers/ai-conversation/llm-synthesis"
)

// Translations from the file configuration (milliseconds) into the
// per-worker Config structs.

func WeatherConfig(cfg *config.Config) *fw.Config {
	w := cfg.Providers.Weather
	return &fw.Config{
		BaseURL: w.BaseURL,
		APIKey:  w.APIKey,
		Units:   w.Units,
		Lang:    w.Lang,
		Timeout: config.GetDuration(w.Timeout),
	}
}

func GeocodingConfig(cfg *config.Config) *gl.Config {
	g := cfg.Providers.Geocoding
	return &gl.Config{
		BaseURL:   g.BaseURL,
		UserAgent: g.UserAgent,
		Timeout:   config.GetDuration(g.Timeout),
	}
}

func NewsConfig(cfg *config.Config) *fnf.Config {
	n := cfg.Providers.News
	feeds := make([]fnf.Feed, 0, len(n.Feeds))
	for _, f := range n.Feeds {
		feeds = append(feeds, fnf.Feed{Name: f.Name, URL: f.URL})
	}
	return &fnf.Config{
		Feeds:     feeds,
		MaxItems:  n.MaxItems,
		UserAgent: n.UserAgent,
		Timeout:   config.GetDuration(n.Timeout),
	}
}

// SearchConfig lists engines in config.EngineOrder, which is the
// aggregator's priority order.
func SearchConfig(cfg *config.Config) *ews.Config {
	s := cfg.Providers.WebSearch
	out := ews.LoadConfig()
	out.Mode = cfg.Enrichment.SearchMode
	out.MaxResults = s.MaxResults
	out.Parallel = s.Parallel
	out.RequestInterval = config.GetDuration(s.RequestInterval)

	out.Engines = out.Engines[:0]
	for _, name := range config.EngineOrder {
		e, ok := s.Engines[name]
		if !ok {
			continue
		}
		out.Engines = append(out.Engines, ews.EngineSettings{
			Name:      name,
			Enabled:   e.Enabled,
			BaseURL:   e.BaseURL,
			APIKey:    e.APIKey,
			UserAgent: e.UserAgent,
			Timeout:   config.GetDuration(e.Timeout),
		})
	}
	return out
}

func EnrichConfig(cfg *config.Config) *ec.Config {
	out := ec.LoadConfig()
	out.CacheTTL = config.GetDuration(cfg.Enrichment.Cache.TTL)
	out.CachePrefix = cfg.Enrichment.Cache.Prefix
	return out
}

func SynthesisConfig(cfg *config.Config) *llm.Config {
	y, g := cfg.Models.Yandex, cfg.Models.GigaChat
	out := llm.LoadConfig()
	out.Yandex = llm.YandexConfig{
		BaseURL:      y.BaseURL,
		OperationURL: y.OperationURL,
		FolderID:     y.FolderID,
		APIKey:       y.APIKey,
		AuthToken:    y.AuthToken,
		Model:        y.Model,
		Temperature:  y.Temperature,
		MaxTokens:    y.MaxTokens,
		PollInterval: config.GetDuration(y.PollInterval),
		Timeout:      config.GetDuration(y.Timeout),
	}
	out.GigaChat = llm.GigaChatConfig{
		BaseURL:       g.BaseURL,
		AuthURL:       g.AuthURL,
		Credentials:   g.Credentials,
		Scope:         g.Scope,
		Model:         g.Model,
		Temperature:   g.Temperature,
		MaxTokens:     g.MaxTokens,
		MaxReplyChars: g.MaxReplyChars,
		InsecureTLS:   g.InsecureTLS,
		Timeout:       config.GetDuration(g.Timeout),
	}
	if t := out.Yandex.Timeout; t > out.Timeout {
		out.Timeout = t
	}
	return out
}
