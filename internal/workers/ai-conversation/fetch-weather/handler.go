// internal/workers/ai-conversation/fetch-weather/handler.go
package fetchweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
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
	TaskType = "fetch-weather"

	providerName = "weather"
)

var (
	ErrWeatherStatus    = errors.New("WEATHER_STATUS")
	ErrWeatherMalformed = errors.New("WEATHER_MALFORMED")
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
		client: httpclient.NewClient(config.Timeout),
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
	result, err := h.Fetch(ctx, input.City)
	switch {
	case err == nil:
		output.Weather = *result
	case apperrors.HasCode(err, apperrors.ErrCodeNotFound):
		stdErr, _ := apperrors.AsStandard(err)
		output.NotFound = true
		output.Weather = models.ProviderOutput{Text: stdErr.Message}
	default:
		// best effort: an unavailable provider completes with empty weather
	}

	h.completeJob(client, job, output)
}

// Fetch returns the current weather block for city. Without an API key it
// returns a block of external links and makes no request.
func (h *Handler) Fetch(ctx context.Context, city string) (*models.ProviderOutput, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperrors.NewInvalidInputError("city is empty")
	}

	if h.config.APIKey == "" {
		h.logger.Warn("weather API key not configured, returning links", map[string]interface{}{
			"city": city,
		})
		metrics.RecordProviderCall(providerName, "links")
		return &models.ProviderOutput{Text: h.renderLinks(city)}, nil
	}

	resp, err := h.client.Get(ctx, strings.TrimRight(h.config.BaseURL, "/")+"/data/2.5/weather", url.Values{
		"q":     {city},
		"appid": {h.config.APIKey},
		"units": {h.config.Units},
		"lang":  {h.config.Lang},
	}, nil)
	if err != nil {
		h.logger.Error("weather request failed", map[string]interface{}{
			"city":  city,
			"error": err.Error(),
		})
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		h.logger.Warn("city not found", map[string]interface{}{"city": city})
		metrics.RecordProviderCall(providerName, "not_found")
		return nil, apperrors.NewNotFoundError(providerName, fmt.Sprintf("❌ Город '%s' не найден. Проверьте написание.", city))
	default:
		h.logger.Error("weather API error", map[string]interface{}{
			"city":       city,
			"statusCode": resp.StatusCode,
		})
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, fmt.Errorf("%w: %d", ErrWeatherStatus, resp.StatusCode))
	}

	var data currentWeather
	if err := json.Unmarshal(resp.Body, &data); err != nil || len(data.Weather) == 0 {
		if err == nil {
			err = errors.New("no weather conditions in payload")
		}
		metrics.RecordProviderCall(providerName, "error")
		return nil, apperrors.NewProviderUnavailableError(providerName, fmt.Errorf("%w: %v", ErrWeatherMalformed, err))
	}

	h.logger.Info("weather fetched", map[string]interface{}{
		"city": city,
		"temp": data.Main.Temp,
	})
	metrics.RecordProviderCall(providerName, "ok")

	return &models.ProviderOutput{
		Results: []models.ProviderResult{{
			Title:  city,
			Body:   data.Weather[0].Description,
			Source: "OpenWeatherMap",
		}},
		Text: h.renderWeather(city, &data),
	}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (h *Handler) renderWeather(city string, data *currentWeather) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🌡️ **ПОГОДА В %s:**\n\n", strings.ToUpper(city))
	fmt.Fprintf(&b, "🌤️ Сейчас: %s\n", data.Weather[0].Description)
	fmt.Fprintf(&b, "🌡️ Температура: %s°C (ощущается как %s°C)\n", formatNumber(data.Main.Temp), formatNumber(data.Main.FeelsLike))
	fmt.Fprintf(&b, "💧 Влажность: %s%%\n", formatNumber(data.Main.Humidity))
	fmt.Fprintf(&b, "🎐 Давление: %s гПа\n", formatNumber(data.Main.Pressure))
	fmt.Fprintf(&b, "💨 Ветер: %s м/с\n\n", formatNumber(data.Wind.Speed))
	fmt.Fprintf(&b, "📅 Данные актуальны на %s\n", h.now().Format("15:04, 02.01.2006"))
	return b.String()
}

func (h *Handler) renderLinks(city string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n🌡️ **ПОГОДА В %s:**\n\n", strings.ToUpper(city))
	b.WriteString("К сожалению, для получения актуальной погоды требуется настройка API ключа.\n\n")
	b.WriteString("Вы можете посмотреть погоду здесь:\n")
	fmt.Fprintf(&b, "🌤️ [Яндекс.Погода](https://yandex.ru/pogoda/%s)\n", url.PathEscape(strings.ToLower(city)))
	fmt.Fprintf(&b, "🌐 [OpenWeatherMap](https://openweathermap.org/city/%s)\n", url.PathEscape(city))
	fmt.Fprintf(&b, "📱 [Gismeteo](https://www.gismeteo.ru/search/%s/)\n", url.PathEscape(city))
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
