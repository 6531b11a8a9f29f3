// internal/workers/ai-conversation/geocode-location/handler.go
package geocodelocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	httpclient "assistant-workers/internal/common/http"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "geocode-location"

	providerName = "geocoding"
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
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := &Output{}
	if result, err := h.Fetch(ctx, input.Location); err == nil && !result.IsEmpty() {
		output.Location = *result
		output.Found = true
	}

	h.completeJob(client, job, output)
}

// Fetch geocodes location and renders the first hit with map links.
// No hit is an empty output, not an error.
func (h *Handler) Fetch(ctx context.Context, location string) (*models.ProviderOutput, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, apperrors.NewInvalidInputError("location is empty")
	}

	resp, err := h.client.Get(ctx, strings.TrimRight(h.config.BaseURL, "/")+"/search", url.Values{
		"q":              {location},
		"format":         {"json"},
		"limit":          {"1"},
		"addressdetails": {"1"},
	}, nil)
	if err != nil {
		h.logger.Error("geocoding request failed", map[string]interface{}{
			"location": location,
			"error":    err.Error(),
		})
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, err)
	}

	if resp.StatusCode != http.StatusOK {
		h.logger.Error("geocoding API error", map[string]interface{}{
			"location":   location,
			"statusCode": resp.StatusCode,
		})
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, fmt.Errorf("status %d", resp.StatusCode))
	}

	var places []place
	if err := json.Unmarshal(resp.Body, &places); err != nil {
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, fmt.Errorf("decode: %w", err))
	}

	if len(places) == 0 || places[0].Lat == "" || places[0].Lon == "" {
		h.logger.Warn("location not found, web search may act as fallback", map[string]interface{}{
			"location": location,
		})
		metrics.RecordProviderCall(providerName, "empty")
		return &models.ProviderOutput{}, nil
	}

	p := places[0]
	h.logger.Info("location found", map[string]interface{}{
		"displayName": p.DisplayName,
	})
	metrics.RecordProviderCall(providerName, "ok")

	osm := fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s&zoom=15", p.Lat, p.Lon)
	return &models.ProviderOutput{
		Results: []models.ProviderResult{{
			Title:  p.DisplayName,
			Body:   fmt.Sprintf("%s, %s", p.Lat, p.Lon),
			URL:    osm,
			Source: "OpenStreetMap",
		}},
		Text: h.render(p, osm),
	}, nil
}

func (h *Handler) render(p place, osm string) string {
	google := fmt.Sprintf("https://www.google.com/maps?q=%s,%s", p.Lat, p.Lon)
	yandex := fmt.Sprintf("https://yandex.ru/maps/?ll=%s%%2C%s&z=15&l=map", p.Lon, p.Lat)

	var b strings.Builder
	b.WriteString("\n🗺️ **ИНФОРМАЦИЯ О МЕСТОПОЛОЖЕНИИ:**\n\n")
	fmt.Fprintf(&b, "📍 %s\n\n", p.DisplayName)
	fmt.Fprintf(&b, "🌐 Координаты: %s, %s\n\n", p.Lat, p.Lon)
	b.WriteString("🔗 **Открыть на карте:**\n")
	fmt.Fprintf(&b, "• [OpenStreetMap](%s)\n", osm)
	fmt.Fprintf(&b, "• [Google Maps](%s)\n", google)
	fmt.Fprintf(&b, "• [Яндекс.Карты](%s)\n\n", yandex)
	fmt.Fprintf(&b, "📅 Данные актуальны на %s\n", h.now().Format("15:04, 02.01.2006"))
	return b.String()
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
		ErrorMessage("INVALID_INPUT: " + err.Error()).
		Send(context.Background())
}
