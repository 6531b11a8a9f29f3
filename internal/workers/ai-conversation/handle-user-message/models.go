// internal/workers/ai-conversation/handle-user-message/models.go
package handleusermessage

import "assistant-workers/internal/models"

type Input struct {
	Query    string `json:"query"`
	Username string `json:"username"`
	// Model is optional; the first available backend is used when empty.
	Model string `json:"model,omitempty"`
}

// Output is what the transport shows the user. ErrorCode is set when
// Response is an error message rather than a model reply.
type Output struct {
	RequestID string          `json:"requestId"`
	Response  string          `json:"response"`
	Model     models.ModelID  `json:"model,omitempty"`
	Category  models.Category `json:"category"`
	Refused   bool            `json:"refused"`
	ErrorCode string          `json:"errorCode,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"required": ["query"],
	"properties": {
		"query":    {"type": "string", "minLength": 1, "maxLength": 4096},
		"username": {"type": "string"},
		"model":    {"type": "string"}
	}
}`
