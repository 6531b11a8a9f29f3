// internal/workers/ai-conversation/parse-user-intent/models.go
package parseuserintent

import "assistant-workers/internal/models"

type Input struct {
	Query    string `json:"query"`
	Username string `json:"username,omitempty"`
}

type Output struct {
	Intent  models.Intent `json:"intent"`
	Intents []string      `json:"intents"`
}

// inputSchema guards the job variables before classification.
const inputSchema = `{
	"type": "object",
	"properties": {
		"query":    {"type": "string", "minLength": 1},
		"username": {"type": "string"}
	},
	"required": ["query"]
}`
