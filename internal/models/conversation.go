// internal/models/conversation.go
package models

// ModelID names a completion backend.
type ModelID string

const (
	ModelYandexGPT ModelID = "yandex"
	ModelGigaChat  ModelID = "giga"
)

// ModelPreference is the default selection order when the user has not
// picked a model.
var ModelPreference = []ModelID{ModelYandexGPT, ModelGigaChat}

// DisplayName is the human label used in replies and status output.
func (m ModelID) DisplayName() string {
	switch m {
	case ModelYandexGPT:
		return "Yandex GPT"
	case ModelGigaChat:
		return "GigaChat"
	default:
		return string(m)
	}
}

// Badge is the colored marker prefixed to replies.
func (m ModelID) Badge() string {
	switch m {
	case ModelYandexGPT:
		return "🔵"
	case ModelGigaChat:
		return "🟢"
	default:
		return "🤖"
	}
}

// ParseModelID accepts the wire names plus a few aliases.
func ParseModelID(s string) (ModelID, bool) {
	switch s {
	case "yandex", "yandexgpt", "yandex-gpt", "A", "a":
		return ModelYandexGPT, true
	case "giga", "gigachat", "B", "b":
		return ModelGigaChat, true
	default:
		return "", false
	}
}
