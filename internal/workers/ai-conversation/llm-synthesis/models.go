// internal/workers/ai-conversation/llm-synthesis/models.go
package llmsynthesis

import "assistant-workers/internal/models"

type Input struct {
	Query    string                   `json:"query"`
	Username string                   `json:"username"`
	Model    string                   `json:"model"`
	Context  models.EnrichmentContext `json:"context"`
}

type Output struct {
	Response string         `json:"response"`
	Model    models.ModelID `json:"model"`
	Refused  bool           `json:"refused"`
}

const inputSchema = `{
	"type": "object",
	"required": ["query", "model"],
	"properties": {
		"query":    {"type": "string", "minLength": 1},
		"username": {"type": "string"},
		"model":    {"type": "string", "minLength": 1},
		"context":  {"type": "object"}
	}
}`

// Yandex Foundation Models wire types.

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexCompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type yandexCompletionRequest struct {
	ModelURI          string                  `json:"modelUri"`
	CompletionOptions yandexCompletionOptions `json:"completionOptions"`
	Messages          []yandexMessage         `json:"messages"`
}

type yandexOperation struct {
	ID       string `json:"id"`
	Done     bool   `json:"done"`
	Response *struct {
		Alternatives []struct {
			Message yandexMessage `json:"message"`
			Status  string        `json:"status"`
		} `json:"alternatives"`
	} `json:"response,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GigaChat OAuth token response. ExpiresAt is unix milliseconds.
type gigaChatToken struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}
