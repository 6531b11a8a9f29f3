// internal/workers/ai-conversation/llm-synthesis/yandex.go
package llmsynthesis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

var (
	ErrOperationPending = errors.New("OPERATION_PENDING")
	ErrOperationFailed  = errors.New("OPERATION_FAILED")
)

// YandexGPT talks to the asynchronous Foundation Models API: the completion
// is submitted once, then the operation is polled until it is done.
type YandexGPT struct {
	config     YandexConfig
	client     *resty.Client
	operations *resty.Client
	logger     Logger
}

func NewYandexGPT(config YandexConfig, log Logger) (*YandexGPT, error) {
	if !config.Configured() {
		return nil, apperrors.NewConfigurationMissingError(string(models.ModelYandexGPT), "folder_id and api_key or auth_token")
	}

	auth := "Bearer " + config.AuthToken
	if config.APIKey != "" {
		auth = "Api-Key " + config.APIKey
	}

	newClient := func(baseURL string) *resty.Client {
		return resty.New().
			SetBaseURL(baseURL).
			SetTimeout(config.Timeout).
			SetHeader("Authorization", auth).
			SetHeader("x-folder-id", config.FolderID).
			SetHeader("Content-Type", "application/json")
	}

	return &YandexGPT{
		config:     config,
		client:     newClient(config.BaseURL),
		operations: newClient(config.OperationURL),
		logger: log.With(map[string]interface{}{
			"model": models.ModelYandexGPT,
		}),
	}, nil
}

func (y *YandexGPT) Name() models.ModelID {
	return models.ModelYandexGPT
}

func (y *YandexGPT) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.config.Timeout)
	defer cancel()

	op, err := y.submit(ctx, systemPrompt, userMessage)
	if err != nil {
		return "", y.wrap(ctx, err)
	}

	if !op.Done {
		if op, err = y.await(ctx, op.ID); err != nil {
			return "", y.wrap(ctx, err)
		}
	}

	if op.Error != nil {
		return "", apperrors.NewModelCallFailedError(string(models.ModelYandexGPT),
			fmt.Errorf("%w: %d %s", ErrOperationFailed, op.Error.Code, op.Error.Message))
	}
	if op.Response == nil || len(op.Response.Alternatives) == 0 || op.Response.Alternatives[0].Message.Text == "" {
		return "", apperrors.NewModelCallFailedError(string(models.ModelYandexGPT), nil)
	}

	return op.Response.Alternatives[0].Message.Text, nil
}

func (y *YandexGPT) submit(ctx context.Context, systemPrompt, userMessage string) (*yandexOperation, error) {
	body := yandexCompletionRequest{
		ModelURI: fmt.Sprintf("gpt://%s/%s/latest", y.config.FolderID, y.config.Model),
		CompletionOptions: yandexCompletionOptions{
			Temperature: y.config.Temperature,
			MaxTokens:   strconv.Itoa(y.config.MaxTokens),
		},
		Messages: []yandexMessage{
			{Role: "system", Text: systemPrompt},
			{Role: "user", Text: userMessage},
		},
	}

	var op yandexOperation
	resp, err := y.client.R().
		SetContext(ctx).
		SetBody(body).
		ForceContentType("application/json").
		SetResult(&op).
		Post("/foundationModels/v1/completionAsync")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("completionAsync status %d: %s", resp.StatusCode(), resp.String())
	}
	if op.ID == "" && !op.Done {
		return nil, fmt.Errorf("%w: no operation id", ErrOperationFailed)
	}

	y.logger.Info("completion submitted", map[string]interface{}{
		"operationId": op.ID,
	})
	return &op, nil
}

// await polls the operation at a constant interval until done or ctx ends.
func (y *YandexGPT) await(ctx context.Context, id string) (*yandexOperation, error) {
	var op yandexOperation
	attempts := 0

	err := retry.Do(ctx, retry.NewConstant(y.config.PollInterval), func(ctx context.Context) error {
		attempts++
		resp, err := y.operations.R().
			SetContext(ctx).
			ForceContentType("application/json").
			SetResult(&op).
			Get("/operations/" + id)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			return fmt.Errorf("operation status %d: %s", resp.StatusCode(), resp.String())
		}
		if !op.Done {
			return retry.RetryableError(ErrOperationPending)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	y.logger.Info("operation finished", map[string]interface{}{
		"operationId": id,
		"polls":       attempts,
	})
	return &op, nil
}

func (y *YandexGPT) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperrors.NewModelTimeoutError(string(models.ModelYandexGPT))
	}
	return apperrors.NewModelCallFailedError(string(models.ModelYandexGPT), err)
}
