// internal/workers/ai-conversation/handle-user-message/handler.go
package handleusermessage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/metrics"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"
	llmsynthesis "assistant-workers/internal/workers/ai-conversation/llm-synthesis"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "handle-user-message"

	noModelMessage      = "❌ Ни одна модель не доступна. Проверьте конфигурацию."
	unknownModelMessage = "❌ Неизвестная модель"
)

var schema = validation.MustSchema(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Stats is the increment-only counter sink.
type Stats interface {
	MessageProcessed()
	ModelRequest(model string)
	Error()
}

// snapshotter is implemented by sinks that can report their counters.
type snapshotter interface {
	Snapshot() metrics.Snapshot
}

type Enricher interface {
	Enrich(ctx context.Context, query, username string) models.EnrichmentContext
}

type Synthesizer interface {
	Available(model models.ModelID) bool
	DefaultModel() (models.ModelID, bool)
	Synthesize(ctx context.Context, input *llmsynthesis.Input) (*llmsynthesis.Output, error)
}

type Handler struct {
	config       *Config
	enricher     Enricher
	synthesizer  Synthesizer
	stats        Stats
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       Logger
	newID        func() string
}

func NewHandler(config *Config, enricher Enricher, synthesizer Synthesizer, stats Stats, log Logger) *Handler {
	logger := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config:       config,
		enricher:     enricher,
		synthesizer:  synthesizer,
		stats:        stats,
		errorHandler: apperrors.NewErrorHandler(logger),
		logger:       logger,
		newID:        uuid.NewString,
	}
}

func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if result := schema.ValidateJSON(job.Variables); !result.Valid {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(result.Error()))
		h.obs.RecordJobProcessed(ctx, "failed")
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewInvalidInputError(err.Error()))
		h.obs.RecordJobProcessed(ctx, "failed")
		return
	}

	output, err := h.HandleUserMessage(ctx, input.Query, input.Username, input.Model)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		h.obs.RecordJobProcessed(ctx, "failed")
		return
	}

	h.completeJob(client, job, output)
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
}

// HandleUserMessage answers one user message. model may be empty, in which
// case the first configured backend is used. Only an empty query is an
// error; every other failure is reported through Output.Response.
func (h *Handler) HandleUserMessage(ctx context.Context, query, username, model string) (*Output, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewInvalidInputError("query is empty")
	}
	if username == "" {
		username = "Unknown"
	}

	h.stats.MessageProcessed()
	output := &Output{RequestID: h.newID(), Category: models.CategoryNone}
	logger := h.logger.With(map[string]interface{}{
		"requestId": output.RequestID,
		"username":  username,
	})

	selected, errOut := h.selectModel(model)
	if errOut != nil {
		logger.Warn("no usable model", map[string]interface{}{
			"requested": model,
			"errorCode": errOut.ErrorCode,
		})
		errOut.RequestID = output.RequestID
		return errOut, nil
	}
	output.Model = selected

	ec := h.enricher.Enrich(ctx, query, username)
	output.Category = ec.Category

	result, err := h.synthesizer.Synthesize(ctx, &llmsynthesis.Input{
		Query:    query,
		Username: username,
		Model:    string(selected),
		Context:  ec,
	})
	if err != nil {
		h.stats.Error()
		output.Response = fmt.Sprintf("❌ Извините, не удалось получить ответ от %s. Попробуйте еще раз.", selected.DisplayName())
		output.ErrorCode = string(apperrors.ErrCodeModelCallFailed)
		if stdErr, ok := apperrors.AsStandard(err); ok {
			output.ErrorCode = string(stdErr.Code)
		}
		logger.Error("model call failed", map[string]interface{}{
			"model": selected,
			"error": err.Error(),
		})
		return output, nil
	}

	h.stats.ModelRequest(string(selected))
	output.Response = result.Response
	output.Refused = result.Refused

	logger.Info("message answered", map[string]interface{}{
		"model":    selected,
		"category": ec.Category,
		"refused":  result.Refused,
	})
	return output, nil
}

// selectModel resolves the requested model. A non-nil Output is the
// user-facing reason no model can be used.
func (h *Handler) selectModel(requested string) (models.ModelID, *Output) {
	if requested == "" {
		m, ok := h.synthesizer.DefaultModel()
		if !ok {
			return "", &Output{
				Response:  noModelMessage,
				Category:  models.CategoryNone,
				ErrorCode: string(apperrors.ErrCodeNoModelAvailable),
			}
		}
		return m, nil
	}

	m, ok := models.ParseModelID(requested)
	if !ok {
		return "", &Output{
			Response:  unknownModelMessage,
			Category:  models.CategoryNone,
			ErrorCode: string(apperrors.ErrCodeUnknownModel),
		}
	}
	if !h.synthesizer.Available(m) {
		return "", &Output{
			Response:  unavailableMessage(m),
			Model:     m,
			Category:  models.CategoryNone,
			ErrorCode: string(apperrors.ErrCodeConfigurationMissing),
		}
	}
	return m, nil
}

func unavailableMessage(m models.ModelID) string {
	if m == models.ModelYandexGPT {
		return "❌ Yandex GPT недоступна"
	}
	return fmt.Sprintf("❌ %s недоступен", m.DisplayName())
}

// Status renders the counters and model availability. It is empty when the
// stats sink cannot report a snapshot.
func (h *Handler) Status() string {
	s, ok := h.stats.(snapshotter)
	if !ok {
		return ""
	}
	return RenderStatus(s.Snapshot(), h.synthesizer.Available)
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
