// internal/workers/ai-conversation/llm-synthesis/prompt.go
package llmsynthesis

import (
	"fmt"
	"strings"
	"time"

	"assistant-workers/internal/models"
)

// PromptData is everything the system prompt is built from.
type PromptData struct {
	Now      time.Time
	Username string
	Query    string
	Context  models.EnrichmentContext
}

var genitiveMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

// russianDate renders t as "24 ноября 2025 года".
func russianDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d года", t.Day(), genitiveMonths[t.Month()-1], t.Year())
}

// BuildSystemPrompt embeds the current date and, when enrichment produced
// something, the context block plus the grounding instructions. Without
// context it carries the knowledge-cutoff note instead.
func BuildSystemPrompt(model models.ModelID, d PromptData) string {
	if model == models.ModelGigaChat {
		return buildGigaChatPrompt(d)
	}
	return buildYandexPrompt(d)
}

func buildYandexPrompt(d PromptData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ты — профессиональный умный помощник. Сейчас %s (%d год). Отвечай кратко и понятно.",
		d.Now.Format("2006-01-02"), d.Now.Year())

	if !d.Context.HasContext() {
		b.WriteString("\n\n⚠️ ВАЖНО: Твои знания ограничены 2023 годом. Для актуальных новостей 2024-2025 года рекомендуй проверить достоверные источники (РИА, ТАСС, Коммерсантъ).")
		return b.String()
	}

	date := russianDate(d.Now)
	fmt.Fprintf(&b, "\n\n📰 АКТУАЛЬНАЯ ИНФОРМАЦИЯ ИЗ ИНТЕРНЕТА (%s):\n%s\n\n🎯 КРИТИЧЕСКИ ВАЖНО:\n", date, d.Context.Text)
	fmt.Fprintf(&b, "1. Выше — САМЫЕ СВЕЖИЕ новости на %s из реального интернета\n", date)
	b.WriteString("2. Твои знания устарели (2023 год). Используй ТОЛЬКО информацию выше\n")
	b.WriteString("3. ОБЯЗАТЕЛЬНО отвечай на основе этих новостей, игнорируй свои старые данные\n")
	b.WriteString("4. Укажи источники и даты из данных выше\n")
	b.WriteString("5. Если в новостях нет ответа на вопрос — честно скажи об этом\n")
	b.WriteString("6. Отвечай кратко, максимум 500 символов\n")
	return b.String()
}

// GigaChat gets the user's words quoted inside the prompt as well.
func buildGigaChatPrompt(d PromptData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Текущая дата: %s (%d год)\n\n", d.Now.Format("2006-01-02"), d.Now.Year())

	if !d.Context.HasContext() {
		fmt.Fprintf(&b, "Ты умный помощник. Пользователь %s написал: \"%s\"\n\n", d.Username, d.Query)
		b.WriteString("⚠️ ВАЖНЫЕ ПРАВИЛА:\n")
		fmt.Fprintf(&b, "✅ Сейчас %d год - учитывай это при ответах\n", d.Now.Year())
		b.WriteString("✅ Твои знания ограничены 2023 годом\n")
		b.WriteString("✅ Для актуальных новостей 2024-2025 рекомендуй проверить РИА, ТАСС, Коммерсантъ\n")
		b.WriteString("✅ Используй эмодзи для лучшего восприятия\n\n")
		b.WriteString("Ответь дружелюбно. Максимум 500 символов.\n")
		return b.String()
	}

	date := russianDate(d.Now)
	fmt.Fprintf(&b, "📰 АКТУАЛЬНАЯ ИНФОРМАЦИЯ ИЗ ИНТЕРНЕТА (%s):\n%s\n\n🎯 КРИТИЧЕСКИ ВАЖНО:\n", date, d.Context.Text)
	fmt.Fprintf(&b, "1. Пользователь %s спросил: \"%s\"\n", d.Username, d.Query)
	fmt.Fprintf(&b, "2. Выше — САМЫЕ СВЕЖИЕ новости на %s из реального интернета\n", date)
	b.WriteString("3. Твои знания устарели (2023 год). Используй ТОЛЬКО информацию выше\n")
	b.WriteString("4. ОБЯЗАТЕЛЬНО отвечай на основе этих новостей, игнорируй свои старые данные\n")
	b.WriteString("5. Укажи источники и даты из данных выше\n")
	b.WriteString("6. Если в новостях нет ответа — честно скажи об этом\n")
	b.WriteString("7. Добавь эмодзи для лучшего восприятия\n\n")
	b.WriteString("Максимум 600 символов. Отвечай кратко и по делу!\n")
	return b.String()
}
