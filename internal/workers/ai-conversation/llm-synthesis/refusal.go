// internal/workers/ai-conversation/llm-synthesis/refusal.go
package llmsynthesis

import (
	"fmt"
	"strings"

	"assistant-workers/internal/models"
)

// DefaultReplyLimit caps GigaChat replies before labelling.
const DefaultReplyLimit = 4000

var refusalPhrases = []string{
	"не могу обсуждать",
	"не могу помочь с этим",
	"не могу ответить",
	"не буду обсуждать",
	"давайте поговорим о чём-нибудь",
}

// IsRefusal reports whether the reply is a canned refusal.
func IsRefusal(response string) bool {
	lower := strings.ToLower(response)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Postprocess labels the model reply. A refusal with context available is
// replaced by the context itself.
func Postprocess(model models.ModelID, response string, ec models.EnrichmentContext) string {
	return postprocess(model, response, ec, DefaultReplyLimit)
}

func postprocess(model models.ModelID, response string, ec models.EnrichmentContext, replyLimit int) string {
	if IsRefusal(response) && ec.HasContext() {
		return fmt.Sprintf("%s **Актуальная информация:**\n\n%s\n\n_AI отказался обрабатывать этот запрос, поэтому показаны найденные данные напрямую._",
			model.Badge(), ec.Text)
	}

	if model == models.ModelGigaChat && replyLimit > 0 && len([]rune(response)) > replyLimit {
		response = models.Truncate(response, replyLimit) + "..."
	}

	return fmt.Sprintf("%s **%s:**\n\n%s", model.Badge(), model.DisplayName(), response)
}
