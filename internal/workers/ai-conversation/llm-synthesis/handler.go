// internal/workers/ai-conversation/llm-synthesis/handler.go
package llmsynthesis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/common/observability"
	"assistant-workers/internal/common/validation"
	"assistant-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "llm-synthesis"
)

var schema = validation.MustSchema(inputSchema)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// Completer is one chat backend. Errors are *apperrors.StandardError values
// with MODEL_CALL_FAILED or MODEL_TIMEOUT codes.
type Completer interface {
	Name() models.ModelID
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type Handler struct {
	config     *Config
	completers map[models.ModelID]Completer
	obs        *observability.Observability
	logger     Logger
	now        func() time.Time
}

func NewHandler(config *Config, log Logger, completers ...Completer) *Handler {
	h := &Handler{
		config:     config,
		completers: make(map[models.ModelID]Completer, len(completers)),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		now: time.Now,
	}
	for _, c := range completers {
		if c != nil {
			h.completers[c.Name()] = c
		}
	}
	return h
}

// NewCompleters builds every configured backend. Backends without
// credentials are logged and left out.
func NewCompleters(config *Config, log Logger) []Completer {
	var completers []Completer

	if y, err := NewYandexGPT(config.Yandex, log); err == nil {
		completers = append(completers, y)
	} else {
		log.Warn("model excluded", map[string]interface{}{"model": models.ModelYandexGPT, "error": err.Error()})
	}

	if g, err := NewGigaChat(config.GigaChat, log); err == nil {
		completers = append(completers, g)
	} else {
		log.Warn("model excluded", map[string]interface{}{"model": models.ModelGigaChat, "error": err.Error()})
	}

	return completers
}

func (h *Handler) WithObservability(obs *observability.Observability) *Handler {
	h.obs = obs
	return h
}

// Available reports whether model has a configured backend.
func (h *Handler) Available(model models.ModelID) bool {
	_, ok := h.completers[model]
	return ok
}

// DefaultModel picks the first available model in preference order.
func (h *Handler) DefaultModel() (models.ModelID, bool) {
	for _, m := range models.ModelPreference {
		if h.Available(m) {
			return m, true
		}
	}
	return "", false
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	if result := schema.ValidateJSON(job.Variables); !result.Valid {
		h.failJob(client, job, apperrors.NewInvalidInputError(result.Error()), 0)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, apperrors.NewInvalidInputError(err.Error()), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Synthesize(ctx, &input)
	if err != nil {
		retries := int32(0)
		if stdErr, ok := apperrors.AsStandard(err); ok && stdErr.Retryable {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return
	}

	h.completeJob(client, job, output)
}

// Synthesize builds the prompt, calls the chosen backend and labels the reply.
func (h *Handler) Synthesize(ctx context.Context, input *Input) (*Output, error) {
	model, ok := models.ParseModelID(input.Model)
	if !ok {
		return nil, apperrors.NewUnknownModelError(input.Model)
	}

	completer, ok := h.completers[model]
	if !ok {
		return nil, apperrors.NewConfigurationMissingError(string(model), "credentials")
	}

	prompt := BuildSystemPrompt(model, PromptData{
		Now:      h.now(),
		Username: input.Username,
		Query:    input.Query,
		Context:  input.Context,
	})

	h.logger.Info("requesting completion", map[string]interface{}{
		"model":      model,
		"username":   input.Username,
		"hasContext": input.Context.HasContext(),
		"category":   input.Context.Category,
	})

	start := time.Now()
	reply, err := completer.Complete(ctx, prompt, input.Query)
	h.obs.RecordModelCompletion(ctx, time.Since(start), string(model), err == nil)
	if err != nil {
		h.logger.Error("completion failed", map[string]interface{}{
			"model": model,
			"error": err.Error(),
		})
		return nil, err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, apperrors.NewModelCallFailedError(string(model), nil)
	}

	refused := IsRefusal(reply) && input.Context.HasContext()
	if refused {
		h.logger.Warn("model refused, returning context directly", map[string]interface{}{
			"model": model,
		})
	}

	return &Output{
		Response: postprocess(model, reply, input.Context, h.config.GigaChat.MaxReplyChars),
		Model:    model,
		Refused:  refused,
	}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":  job.Key,
		"error":   err.Error(),
		"retries": retries,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(err.Error()).
		Send(context.Background())
}
