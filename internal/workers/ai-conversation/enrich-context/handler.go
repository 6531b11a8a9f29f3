// internal/workers/ai-conversation/enrich-context/handler.go
package enrichcontext

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
	parseuserintent "assistant-workers/internal/workers/ai-conversation/parse-user-intent"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "enrich-context"

	ProviderWeather   = "weather"
	ProviderGeocoding = "geocoding"
	ProviderNews      = "news"
	ProviderSearch    = "search"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

var schema = validation.MustSchema(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Provider is the contract every enrichment source implements. Errors are
// *apperrors.StandardError values; an empty output is not an error.
type Provider interface {
	Fetch(ctx context.Context, arg string) (*models.ProviderOutput, error)
}

// Providers holds the chain members. A nil provider was excluded at startup
// (missing configuration) and is skipped.
type Providers struct {
	Weather   Provider
	Geocoding Provider
	News      Provider
	Search    Provider
}

type Handler struct {
	config    *Config
	providers Providers
	classify  func(query string) models.Intent
	obs       *observability.Observability
	logger    Logger
}

func NewHandler(config *Config, providers Providers, log Logger) *Handler {
	return &Handler{
		config:    config,
		providers: providers,
		classify:  parseuserintent.Classify,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// WithObservability records chain latency per winning category.
func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if result := schema.ValidateJSON(job.Variables); !result.Valid {
		h.failJob(client, job, fmt.Errorf("%w: %s", ErrInvalidInput, result.Error()))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	intent := h.classify(input.Query)
	if input.Intent != nil {
		intent = *input.Intent
	}

	ec := h.EnrichIntent(ctx, input.Query, intent)
	h.completeJob(client, job, &Output{Context: ec, HasContext: ec.HasContext()})
}

// Enrich classifies the query and runs the provider chain. It never fails:
// every provider error ends as an empty or not-found context.
func (h *Handler) Enrich(ctx context.Context, query, username string) models.EnrichmentContext {
	intent := h.classify(query)

	h.logger.Info("query classified", map[string]interface{}{
		"username": username,
		"weather":  intent.Weather,
		"map":      intent.Map,
		"search":   intent.Search,
		"city":     intent.City,
	})

	return h.EnrichIntent(ctx, query, intent)
}

// EnrichIntent runs the priority chain for an already classified query.
// The first provider with content wins; each provider is asked at most once.
func (h *Handler) EnrichIntent(ctx context.Context, query string, intent models.Intent) models.EnrichmentContext {
	start := time.Now()
	ec := h.chain(ctx, query, intent)

	metrics.RecordEnrichment(string(ec.Category))
	h.obs.RecordEnrichment(ctx, time.Since(start), string(ec.Category))

	h.logger.Info("enrichment finished", map[string]interface{}{
		"category": ec.Category,
		"provider": ec.Provider,
		"chars":    len([]rune(ec.Text)),
		"duration": time.Since(start).String(),
	})
	return ec
}

func (h *Handler) chain(ctx context.Context, query string, intent models.Intent) models.EnrichmentContext {
	if intent.Weather && intent.City != "" {
		if ec, ok := h.try(ctx, models.CategoryWeather, ProviderWeather, h.providers.Weather, intent.City); ok {
			return ec
		}
	}

	mapFellThrough := false
	if intent.Map {
		if intent.MapLocation != "" {
			if ec, ok := h.try(ctx, models.CategoryMap, ProviderGeocoding, h.providers.Geocoding, intent.MapLocation); ok {
				return ec
			}
		}
		mapFellThrough = true
	}

	if intent.Search || mapFellThrough {
		if ec, ok := h.try(ctx, models.CategoryNews, ProviderNews, h.providers.News, query); ok {
			return ec
		}
	}

	if intent.Search {
		if ec, ok := h.try(ctx, models.CategorySearch, ProviderSearch, h.providers.Search, query); ok {
			return ec
		}
	}

	return models.EmptyContext()
}

// try asks one provider. A NotFound error carries a user-facing message and
// counts as content; every other error counts as empty.
func (h *Handler) try(ctx context.Context, category models.Category, name string, p Provider, arg string) (models.EnrichmentContext, bool) {
	if p == nil {
		return models.EnrichmentContext{}, false
	}

	out, err := p.Fetch(ctx, arg)
	if err != nil {
		if stdErr, ok := apperrors.AsStandard(err); ok && stdErr.Code == apperrors.ErrCodeNotFound && stdErr.Message != "" {
			h.logger.Info("provider reported not found", map[string]interface{}{
				"provider": name,
				"arg":      arg,
			})
			return models.EnrichmentContext{Category: category, Provider: name, Text: stdErr.Message}, true
		}

		h.logger.Warn("provider failed, treating as empty", map[string]interface{}{
			"provider": name,
			"error":    err.Error(),
		})
		return models.EnrichmentContext{}, false
	}

	if out.IsEmpty() {
		h.logger.Info("provider returned nothing", map[string]interface{}{
			"provider": name,
		})
		return models.EnrichmentContext{}, false
	}

	return models.EnrichmentContext{
		Category: category,
		Provider: name,
		Text:     out.Text,
		Results:  out.Results,
	}, true
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey": job.Key,
		"error":  err.Error(),
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(err.Error()).
		Send(context.Background())
}
