// internal/workers/ai-conversation/enrich-web-search/handler.go
package enrichwebsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	TaskType = "enrich-web-search"

	providerName = "search"
)

var (
	ErrWebSearchTimeout = errors.New("WEB_SEARCH_TIMEOUT")
	ErrAllEnginesFailed = errors.New("ALL_ENGINES_FAILED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config   *Config
	engines  []Engine
	limiters []*rate.Limiter
	logger   Logger
	now      func() time.Time
}

func NewHandler(config *Config, log Logger) *Handler {
	logger := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return newHandler(config, logger, NewEngines(config.Engines, logger))
}

// NewHandlerWithEngines uses the given engines, in priority order, instead
// of building them from config.
func NewHandlerWithEngines(config *Config, log Logger, engines ...Engine) *Handler {
	return newHandler(config, log.With(map[string]interface{}{
		"taskType": TaskType,
	}), engines)
}

func newHandler(config *Config, logger Logger, engines []Engine) *Handler {
	limit := rate.Inf
	if config.RequestInterval > 0 {
		limit = rate.Every(config.RequestInterval)
	}

	limiters := make([]*rate.Limiter, len(engines))
	for i := range engines {
		limiters[i] = rate.NewLimiter(limit, 1)
	}

	return &Handler{
		config:   config,
		engines:  engines,
		limiters: limiters,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := &Output{}
	result, err := h.fetch(ctx, input.Query, input.MaxResults)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
			h.failJob(client, job, err, 0)
			return
		}
		h.logger.Warn("web search failed, returning empty results", map[string]interface{}{
			"error":   err.Error(),
			"timeout": errors.Is(err, ErrWebSearchTimeout),
		})
	} else {
		output.Search = *result
	}

	h.completeJob(client, job, output)
}

// Fetch runs the configured search mode with the configured result limit.
func (h *Handler) Fetch(ctx context.Context, query string) (*models.ProviderOutput, error) {
	return h.fetch(ctx, query, h.config.MaxResults)
}

func (h *Handler) fetch(ctx context.Context, query string, maxResults int) (*models.ProviderOutput, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewInvalidInputError("search query is empty")
	}
	if maxResults <= 0 {
		maxResults = h.config.MaxResults
	}

	if h.config.Mode == ModeInline {
		return &models.ProviderOutput{Text: h.InlineSearch(ctx, query, maxResults)}, nil
	}

	results, failures := h.aggregate(ctx, query, maxResults)
	if len(results) == 0 {
		switch {
		case ctx.Err() != nil:
			return nil, apperrors.NewProviderUnavailableError(providerName, fmt.Errorf("%w: %v", ErrWebSearchTimeout, ctx.Err()))
		case failures > 0 && failures == len(h.engines):
			return nil, apperrors.NewProviderUnavailableError(providerName, ErrAllEnginesFailed)
		}
		return &models.ProviderOutput{}, nil
	}

	return &models.ProviderOutput{Results: results, Text: Render(results)}, nil
}

// Search queries every engine, merges and deduplicates the results, keeps
// the first maxResults and renders them. Nothing found renders as "".
func (h *Handler) Search(ctx context.Context, query string, maxResults int) string {
	results, _ := h.aggregate(ctx, query, maxResults)
	return Render(results)
}

func (h *Handler) aggregate(ctx context.Context, query string, maxResults int) ([]models.ProviderResult, int) {
	var (
		all      []models.ProviderResult
		failures int
	)
	if h.config.Parallel {
		all, failures = h.collectParallel(ctx, query, maxResults)
	} else {
		all, failures = h.collectSequential(ctx, query, maxResults)
	}

	unique := Deduplicate(all)
	if len(unique) > maxResults {
		unique = unique[:maxResults]
	}

	h.logger.Info("web search completed", map[string]interface{}{
		"query":       query,
		"collected":   len(all),
		"resultCount": len(unique),
		"failures":    failures,
	})
	return unique, failures
}

func (h *Handler) collectSequential(ctx context.Context, query string, maxResults int) ([]models.ProviderResult, int) {
	var (
		all      []models.ProviderResult
		failures int
	)
	for i := range h.engines {
		results, err := h.searchEngine(ctx, i, query, maxResults)
		if err != nil {
			failures++
			continue
		}
		all = append(all, results...)
	}
	return all, failures
}

// collectParallel fans out to every engine and merges the answers back in
// priority order, whatever order they arrive in.
func (h *Handler) collectParallel(ctx context.Context, query string, maxResults int) ([]models.ProviderResult, int) {
	buckets := make([][]models.ProviderResult, len(h.engines))
	failed := make([]bool, len(h.engines))

	g, gctx := errgroup.WithContext(ctx)
	for i := range h.engines {
		g.Go(func() error {
			results, err := h.searchEngine(gctx, i, query, maxResults)
			if err != nil {
				failed[i] = true
				return nil
			}
			buckets[i] = results
			return nil
		})
	}
	_ = g.Wait()

	var (
		all      []models.ProviderResult
		failures int
	)
	for i, results := range buckets {
		if failed[i] {
			failures++
		}
		all = append(all, results...)
	}
	return all, failures
}

func (h *Handler) searchEngine(ctx context.Context, i int, query string, maxResults int) ([]models.ProviderResult, error) {
	engine := h.engines[i]
	if err := h.limiters[i].Wait(ctx); err != nil {
		return nil, err
	}

	results, err := engine.Search(ctx, query, maxResults)
	if err != nil {
		h.logger.Warn("search engine failed", map[string]interface{}{
			"engine": engine.Name(),
			"error":  err.Error(),
		})
		metrics.RecordProviderCall(providerName+":"+engine.Name(), "error")
		return nil, err
	}

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.RecordProviderCall(providerName+":"+engine.Name(), outcome)
	return results, nil
}

// InlineSearch asks only the primary engine. News for a sharpened query
// comes first; general results are added when news is thin.
func (h *Handler) InlineSearch(ctx context.Context, query string, maxResults int) string {
	if len(h.engines) == 0 {
		return ""
	}
	primary := h.engines[0]
	improved := ImproveQuery(query, h.now().Year())

	var text string
	if nt, ok := primary.(newsTextEngine); ok {
		if err := h.limiters[0].Wait(ctx); err == nil {
			news, err := nt.News(ctx, improved, maxResults)
			if err != nil {
				h.logger.Warn("inline news search failed", map[string]interface{}{
					"engine": primary.Name(),
					"error":  err.Error(),
				})
			}
			text = renderInlineNews(news)
		}

		if needsTopUp(text) {
			if err := h.limiters[0].Wait(ctx); err == nil {
				web, err := nt.Text(ctx, query, maxResults)
				if err != nil {
					h.logger.Warn("inline web search failed", map[string]interface{}{
						"engine": primary.Name(),
						"error":  err.Error(),
					})
				}
				text += renderInlineText(web, text == "")
			}
		}
	} else {
		results, err := h.searchEngine(ctx, 0, improved, maxResults)
		if err == nil {
			text = renderInlineText(results, true)
		}
	}

	if text == "" {
		h.logger.Warn("inline search found nothing", map[string]interface{}{
			"query": query,
		})
		return ""
	}
	return text + inlineTrailer
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, sendErr := cmd.Send(context.Background()); sendErr != nil {
		h.logger.Error("Failed to send complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  sendErr.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if stdErr, ok := apperrors.AsStandard(err); ok {
		errorCode = string(stdErr.Code)
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}
