// internal/workers/ai-conversation/enrich-web-search/render.go
package enrichwebsearch

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"assistant-workers/internal/models"
)

const (
	untitled      = "Без названия"
	unknownSource = "Неизвестно"

	aggregateTrailer = "\n⚠️ ВАЖНО: Используй ЭТУ информацию для ответа!\n"
	inlineTrailer    = "\n⚠️ ВАЖНО: Используй ЭТУ информацию для ответа! Она актуальная!\n"

	// below this many characters the news section is topped up with web results
	inlineNewsMinChars = 200
)

var (
	newsQueryWords   = []string{"новост", "сейчас", "что там", "события", "актуальн"}
	personQueryWords = []string{"макрон", "трамп", "путин", "байден", "президент", "министр"}
)

// Deduplicate keeps the first result for every URL and drops results
// without one. Order is preserved.
func Deduplicate(results []models.ProviderResult) []models.ProviderResult {
	seen := make(map[string]struct{}, len(results))
	unique := make([]models.ProviderResult, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

// Render formats aggregated results as the search context block. An empty
// slice renders as "".
func Render(results []models.ProviderResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n🔍 РЕЗУЛЬТАТЫ ПОИСКА:\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = untitled
		}
		source := r.Source
		if source == "" {
			source = unknownSource
		}

		fmt.Fprintf(&b, "\n%d. **%s**", i+1, title)
		if r.PublishedAt != "" {
			fmt.Fprintf(&b, " (%s)", r.PublishedAt)
		}
		fmt.Fprintf(&b, " - %s\n", source)

		if body := models.Excerpt(r.Body, models.ExcerptLimit); body != "" {
			fmt.Fprintf(&b, "   %s\n", body)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "   🔗 %s\n", r.URL)
		}
	}
	b.WriteString(aggregateTrailer)
	return b.String()
}

// ImproveQuery sharpens news-like and person-like queries before they are
// sent to a news search.
func ImproveQuery(query string, year int) string {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, newsQueryWords):
		return query + " новости " + strconv.Itoa(year)
	case containsAny(lower, personQueryWords):
		return query + " последние новости"
	default:
		return query
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func renderInlineNews(results []models.ProviderResult) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n📰 СВЕЖИЕ НОВОСТИ:\n")
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = untitled
		}
		fmt.Fprintf(&b, "\n%d. **%s**", i+1, title)
		if r.PublishedAt != "" {
			fmt.Fprintf(&b, " (%s)", r.PublishedAt)
		}
		if r.Source != "" {
			fmt.Fprintf(&b, " - %s", r.Source)
		}
		b.WriteString("\n")
		writeInlineBody(&b, r)
	}
	b.WriteString("\n")
	return b.String()
}

func renderInlineText(results []models.ProviderResult, first bool) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	if first {
		b.WriteString("\n🔍 НАЙДЕННАЯ ИНФОРМАЦИЯ:\n")
	} else {
		b.WriteString("\n🔍 ДОПОЛНИТЕЛЬНО:\n")
	}
	for i, r := range results {
		title := r.Title
		if title == "" {
			title = untitled
		}
		fmt.Fprintf(&b, "\n%d. **%s**\n", i+1, title)
		writeInlineBody(&b, r)
	}
	b.WriteString("\n")
	return b.String()
}

func writeInlineBody(b *strings.Builder, r models.ProviderResult) {
	if body := models.Excerpt(r.Body, models.InlineExcerptLimit); body != "" {
		fmt.Fprintf(b, "   %s\n", body)
	}
	if r.URL != "" {
		fmt.Fprintf(b, "   🔗 %s\n", r.URL)
	}
}

func needsTopUp(section string) bool {
	return utf8.RuneCountInString(section) < inlineNewsMinChars
}
