// internal/workers/ai-conversation/parse-user-intent/classifier.go
package parseuserintent

import (
	"regexp"
	"strings"

	"assistant-workers/internal/models"
)

// Keyword sets are lower-case substrings matched against the lower-cased query.
var (
	weatherKeywords = []string{
		"погод", "температур", "градус", "тепло", "холодно", "дожд", "снег",
	}

	mapKeywords = []string{
		"карт", "адрес", "координат", "местоположен", "как добраться",
		"где находится", "где ", "остановк", "магазин", "универмаг",
	}

	// Deliberately broad: ordinary words like "где" or "год" trigger it.
	searchKeywords = []string{
		"сейчас", "новост", "актуальн", "текущ", "последн",
		"что там", "как там", "что с", "что происходит",
		"где", "когда", "кто", "какой", "какая", "какие",
		"2024", "2025", "год", "месяц",
		"президент", "правительств", "министр", "выбор", "победил",
		"эмануэль", "макрон", "трамп", "путин", "байден",
		"франц", "росси", "америк", "сша", "украин",
		"событи", "ситуаци", "положени", "состояни",
		"подал", "ушел", "уволи", "назначи", "избра",
	}
)

var (
	prepositionCityPattern = regexp.MustCompile(`в[\s\p{Zs}]+([А-Яа-яЁёA-Za-z\-]+)`)
	weatherCityPattern     = regexp.MustCompile(`погод[аые][\s\p{Zs}]+([А-Яа-яЁёA-Za-z\-]+)`)
	mapLocationPattern     = regexp.MustCompile(`(?i)(?:карт[аыу]|адрес|координат[ыа]|где находится|как добраться|где)[\s\p{Zs}]+(.+)`)
)

// cityVariations maps inflected Russian city names to the name the weather
// provider understands.
var cityVariations = map[string]string{
	"москве":        "Moscow",
	"москвы":        "Moscow",
	"москву":        "Moscow",
	"москва":        "Moscow",
	"петербурге":    "Saint Petersburg",
	"питере":        "Saint Petersburg",
	"питер":         "Saint Petersburg",
	"новосибирске":  "Novosibirsk",
	"новосибирска":  "Novosibirsk",
	"новосибирск":   "Novosibirsk",
	"екатеринбурге": "Yekaterinburg",
	"екатеринбург":  "Yekaterinburg",
	"казани":        "Kazan",
	"казань":        "Kazan",
	"нижнем":        "Nizhny Novgorod",
	"красноярске":   "Krasnoyarsk",
	"красноярск":    "Krasnoyarsk",
	"лондоне":       "London",
	"лондон":        "London",
	"париже":        "Paris",
	"париж":         "Paris",
	"берлине":       "Berlin",
	"берлин":        "Berlin",
	"нью-йорке":     "New York",
	"вашингтоне":    "Washington",
	"вашингтон":     "Washington",
	"токио":         "Tokyo",
	"пекине":        "Beijing",
	"пекин":         "Beijing",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// Classify maps a raw query to its enrichment intents. It is pure and makes
// no outbound calls.
func Classify(query string) models.Intent {
	lower := strings.ToLower(query)

	intent := models.Intent{
		Weather: containsAny(lower, weatherKeywords),
		Map:     containsAny(lower, mapKeywords),
		Search:  containsAny(lower, searchKeywords),
	}

	if intent.Weather {
		intent.LocationHint = ExtractLocation(query)
		if intent.LocationHint != "" {
			intent.City = NormalizeCity(intent.LocationHint)
		}
	}
	if intent.Map {
		intent.MapLocation = ExtractMapLocation(query)
	}

	return intent
}

// ExtractLocation returns the city token of a weather question, or "".
func ExtractLocation(query string) string {
	for _, re := range []*regexp.Regexp{prepositionCityPattern, weatherCityPattern} {
		if m := re.FindStringSubmatch(query); m != nil {
			return m[1]
		}
	}
	return ""
}

// ExtractMapLocation returns the text following a map keyword with
// surrounding ?!. removed, or "".
func ExtractMapLocation(query string) string {
	m := mapLocationPattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(m[1], "?!."))
}

// NormalizeCity turns an inflected city name into its canonical form.
// Unknown names get a best-effort suffix strip; failure is not an error.
func NormalizeCity(city string) string {
	city = strings.TrimSpace(city)
	lower := strings.ToLower(city)

	if canonical, ok := cityVariations[lower]; ok {
		return canonical
	}

	runes := []rune(city)
	n := len(runes)

	// prepositional case
	switch {
	case strings.HasSuffix(lower, "ске"), strings.HasSuffix(lower, "не"):
		return string(runes[:n-1])
	case strings.HasSuffix(lower, "е") && n > 3 && !strings.HasSuffix(lower, "ие"):
		return string(runes[:n-1])
	}

	// genitive case
	if strings.HasSuffix(lower, "ы") && n > 3 {
		return string(runes[:n-1])
	}

	return city
}
