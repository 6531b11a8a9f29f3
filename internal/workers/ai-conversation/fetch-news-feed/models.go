// internal/workers/ai-conversation/fetch-news-feed/models.go
package fetchnewsfeed

import "assistant-workers/internal/models"

type Input struct {
	Query    string `json:"query"`
	MaxItems int    `json:"maxItems,omitempty"`
}

type Output struct {
	News models.ProviderOutput `json:"news"`
}
