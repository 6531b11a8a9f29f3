// internal/workers/ai-conversation/fetch-news-feed/handler.go
package fetchnewsfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpclient "assistant-workers/internal/common/http"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/mmcdole/gofeed"
)

const (
	TaskType = "fetch-news-feed"

	providerName = "news"
	untitled     = "Без заголовка"
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *httpclient.Client
	logger Logger
	now    func() time.Time
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClientWithUserAgent(config.Timeout, config.UserAgent),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unreadable job variables, fetching with defaults", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// every feed gets its own timeout inside the client
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout*time.Duration(len(h.config.Feeds)+1))
	defer cancel()

	maxItems := input.MaxItems
	if maxItems <= 0 {
		maxItems = h.config.MaxItems
	}

	output := &Output{}
	if result, err := h.FetchN(ctx, maxItems); err == nil {
		output.News = *result
	}

	h.completeJob(client, job, output)
}

// Fetch returns the latest items from the configured feeds. The query is
// not used for filtering; feeds are ordered by recency already.
func (h *Handler) Fetch(ctx context.Context, _ string) (*models.ProviderOutput, error) {
	return h.FetchN(ctx, h.config.MaxItems)
}

// FetchN reads at most maxItems per feed and 2*maxItems overall. A failing
// feed is skipped.
func (h *Handler) FetchN(ctx context.Context, maxItems int) (*models.ProviderOutput, error) {
	if maxItems <= 0 {
		maxItems = 5
	}

	var items []models.ProviderResult
	for _, feed := range h.config.Feeds {
		feedItems, err := h.fetchFeed(ctx, feed, maxItems)
		if err != nil {
			h.logger.Warn("feed skipped", map[string]interface{}{
				"feed":  feed.Name,
				"error": err.Error(),
			})
			metrics.RecordProviderCall(providerName+":"+feed.Name, "error")
			continue
		}
		metrics.RecordProviderCall(providerName+":"+feed.Name, "ok")
		items = append(items, feedItems...)
	}

	if limit := maxItems * 2; len(items) > limit {
		items = items[:limit]
	}

	if len(items) == 0 {
		h.logger.Warn("feeds returned no news", nil)
		return &models.ProviderOutput{}, nil
	}

	text := h.render(items)
	h.logger.Info("news context built", map[string]interface{}{
		"items": len(items),
		"chars": len([]rune(text)),
	})

	return &models.ProviderOutput{Results: items, Text: text}, nil
}

func (h *Handler) fetchFeed(ctx context.Context, feed Feed, maxItems int) ([]models.ProviderResult, error) {
	resp, err := h.client.Get(ctx, feed.URL, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := make([]models.ProviderResult, 0, maxItems)
	for _, item := range parsed.Items {
		if len(out) == maxItems {
			break
		}
		if item == nil {
			continue
		}

		result := models.ProviderResult{
			Title:       strings.TrimSpace(item.Title),
			Body:        models.Excerpt(models.StripTags(item.Description), models.ExcerptLimit),
			URL:         strings.TrimSpace(item.Link),
			Source:      strings.ToUpper(feed.Name),
			PublishedAt: strings.TrimSpace(item.Published),
		}
		if result.Title == "" {
			result.Title = untitled
		}
		if result.IsEmpty() {
			continue
		}
		out = append(out, result)
	}

	return out, nil
}

func (h *Handler) render(items []models.ProviderResult) string {
	stamp := h.now().Format("02.01.2006 15:04")

	lines := []string{fmt.Sprintf("\n📰 СВЕЖИЕ НОВОСТИ (%s):\n", stamp)}
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("\n%d. **%s**", i+1, item.Title))
		lines = append(lines, "   Источник: "+item.Source)
		if item.PublishedAt != "" {
			lines = append(lines, "   Дата: "+item.PublishedAt)
		}
		if item.Body != "" {
			lines = append(lines, "   "+item.Body)
		}
		if item.URL != "" {
			lines = append(lines, "   🔗 "+item.URL)
		}
	}
	lines = append(lines, fmt.Sprintf("\n⚠️ Актуальные новости на %s", stamp))

	return strings.Join(lines, "\n")
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
