// internal/workers/ai-conversation/llm-synthesis/gigachat.go
package llmsynthesis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "assistant-workers/internal/common/errors"
	"assistant-workers/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// tokens are refreshed this long before they expire
const tokenRefreshMargin = time.Minute

var ErrTokenRequest = errors.New("GIGACHAT_TOKEN")

// GigaChat exposes an OpenAI-compatible chat API behind a short-lived OAuth
// token. The token is cached until shortly before expires_at.
type GigaChat struct {
	config GigaChatConfig
	auth   *resty.Client
	chat   openai.Client
	logger Logger
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewGigaChat(config GigaChatConfig, log Logger) (*GigaChat, error) {
	if !config.Configured() {
		return nil, apperrors.NewConfigurationMissingError(string(models.ModelGigaChat), "credentials")
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	if config.InsecureTLS {
		// the API is served with a certificate chain most trust stores lack
		httpClient.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	return &GigaChat{
		config: config,
		auth: resty.NewWithClient(httpClient).
			SetHeader("Accept", "application/json"),
		chat: openai.NewClient(
			option.WithBaseURL(strings.TrimRight(config.BaseURL, "/")+"/"),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
		logger: log.With(map[string]interface{}{
			"model": models.ModelGigaChat,
		}),
		now: time.Now,
	}, nil
}

func (g *GigaChat) Name() models.ModelID {
	return models.ModelGigaChat
}

func (g *GigaChat) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	token, err := g.accessToken(ctx)
	if err != nil {
		return "", g.wrap(ctx, err)
	}

	completion, err := g.chat.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.config.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		Temperature: openai.Float(g.config.Temperature),
		MaxTokens:   openai.Int(int64(g.config.MaxTokens)),
	}, option.WithAPIKey(token))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			g.invalidateToken()
		}
		return "", g.wrap(ctx, err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", apperrors.NewModelCallFailedError(string(models.ModelGigaChat), nil)
	}
	return completion.Choices[0].Message.Content, nil
}

func (g *GigaChat) accessToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && g.now().Add(tokenRefreshMargin).Before(g.expiresAt) {
		return g.token, nil
	}

	var tok gigaChatToken
	resp, err := g.auth.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+g.config.Credentials).
		SetHeader("RqUID", uuid.NewString()).
		SetFormData(map[string]string{"scope": g.config.Scope}).
		ForceContentType("application/json").
		SetResult(&tok).
		Post(g.config.AuthURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenRequest, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrTokenRequest, resp.StatusCode())
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenRequest)
	}

	g.token = tok.AccessToken
	g.expiresAt = time.UnixMilli(tok.ExpiresAt)

	g.logger.Info("access token refreshed", map[string]interface{}{
		"expiresAt": g.expiresAt.UTC().Format(time.RFC3339),
	})
	return g.token, nil
}

func (g *GigaChat) invalidateToken() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

func (g *GigaChat) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return apperrors.NewModelTimeoutError(string(models.ModelGigaChat))
	}
	return apperrors.NewModelCallFailedError(string(models.ModelGigaChat), err)
}
