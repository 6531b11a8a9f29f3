// internal/app/app.go
package app

import (
	"time"

	"assistant-workers/internal/common/camunda"
	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"

	ec "assistant-workers/internal/workers/ai-conversation/enrich-context"
	ews "assistant-workers/internal/workers/ai-conversation/enrich-web-search"
	fnf "assistant-workers/internal/workers/ai-conversation/fetch-news-feed"
	fw "assistant-workers/internal/workers/ai-conversation/fetch-weather"
	gl "assistant-workers/internal/workers/ai-conversation/geocode-location"
	hum "assistant-workers/internal/workers/ai-conversation/handle-user-message"
	llm "assistant-workers/internal/workers/ai-conversation/llm-synthesis"
	pui "assistant-workers/internal/workers/ai-conversation/parse-user-intent"
)

// App holds every worker handler built from one configuration. The same
// graph backs the Zeebe workers, the HTTP API and the CLI.
type App struct {
	Intent    *pui.Handler
	Weather   *fw.Handler
	Geocoding *gl.Handler
	News      *fnf.Handler
	Search    *ews.Handler
	Enrich    *ec.Handler
	Synthesis *llm.Handler
	Messages  *hum.Handler
	Stats     *metrics.Stats
}

// Options carries the optional infrastructure.
type Options struct {
	// Redis enables the provider cache when cfg.Enrichment.Cache is enabled.
	Redis *database.RedisClient
	Obs   *observability.Observability
	Stats *metrics.Stats
}

func New(cfg *config.Config, log logger.Logger, opts Options) *App {
	stats := opts.Stats
	if stats == nil {
		stats = metrics.NewStats()
	}

	a := &App{Stats: stats}

	a.Intent = pui.NewHandler(&pui.Config{Timeout: 5 * time.Second}, &intentLogger{log})
	a.Weather = fw.NewHandler(WeatherConfig(cfg), &weatherLogger{log})
	a.Geocoding = gl.NewHandler(GeocodingConfig(cfg), &geocodingLogger{log})
	a.News = fnf.NewHandler(NewsConfig(cfg), &newsLogger{log})
	a.Search = ews.NewHandler(SearchConfig(cfg), &searchLogger{log})

	enrichCfg := EnrichConfig(cfg)
	enrichLog := &enrichLogger{log}
	providers := ec.Providers{
		Weather:   a.Weather,
		Geocoding: a.Geocoding,
		News:      a.News,
		Search:    a.Search,
	}
	if opts.Redis != nil && cfg.Enrichment.Cache.Enabled {
		providers = ec.Providers{
			Weather:   ec.NewCachedProvider(ec.ProviderWeather, a.Weather, opts.Redis, enrichCfg, enrichLog),
			Geocoding: ec.NewCachedProvider(ec.ProviderGeocoding, a.Geocoding, opts.Redis, enrichCfg, enrichLog),
			News:      ec.NewCachedProvider(ec.ProviderNews, a.News, opts.Redis, enrichCfg, enrichLog),
			Search:    ec.NewCachedProvider(ec.ProviderSearch, a.Search, opts.Redis, enrichCfg, enrichLog),
		}
		log.Info("provider cache enabled", map[string]interface{}{
			"ttl":    enrichCfg.CacheTTL.String(),
			"prefix": enrichCfg.CachePrefix,
		})
	}
	a.Enrich = ec.NewHandler(enrichCfg, providers, enrichLog).WithObservability(opts.Obs)

	llmCfg := SynthesisConfig(cfg)
	llmLog := &synthesisLogger{log}
	a.Synthesis = llm.NewHandler(llmCfg, llmLog, llm.NewCompleters(llmCfg, llmLog)...).WithObservability(opts.Obs)

	a.Messages = hum.NewHandler(hum.LoadConfig(), a.Enrich, a.Synthesis, stats, &messageLogger{log}).WithObservability(opts.Obs)

	return a
}

// Worker pairs a Zeebe task type with the handler serving it.
type Worker struct {
	TaskType string
	Handler  camunda.JobHandler
}

// Workers lists the job handlers in pipeline order.
func (a *App) Workers() []Worker {
	return []Worker{
		{pui.TaskType, a.Intent},
		{fw.TaskType, a.Weather},
		{gl.TaskType, a.Geocoding},
		{fnf.TaskType, a.News},
		{ews.TaskType, a.Search},
		{ec.TaskType, a.Enrich},
		{llm.TaskType, a.Synthesis},
		{hum.TaskType, a.Messages},
	}
}

// TaskTypes returns every task type this binary can serve.
func TaskTypes() []string {
	return []string{
		pui.TaskType,
		fw.TaskType,
		gl.TaskType,
		fnf.TaskType,
		ews.TaskType,
		ec.TaskType,
		llm.TaskType,
		hum.TaskType,
	}
}
