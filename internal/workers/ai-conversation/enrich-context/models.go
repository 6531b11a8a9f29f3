// internal/workers/ai-conversation/enrich-context/models.go
package enrichcontext

import "assistant-workers/internal/models"

type Input struct {
	Query    string `json:"query"`
	Username string `json:"username,omitempty"`
	// Intent is set when an upstream task already classified the query.
	Intent *models.Intent `json:"intent,omitempty"`
}

type Output struct {
	Context    models.EnrichmentContext `json:"context"`
	HasContext bool                     `json:"hasContext"`
}

const inputSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query": {"type": "string", "minLength": 1, "maxLength": 4096},
		"username": {"type": "string"},
		"intent": {"type": "object"}
	}
}`
