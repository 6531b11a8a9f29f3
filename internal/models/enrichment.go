// internal/models/enrichment.go
package models

import "strings"

// Category identifies which provider family supplied the enrichment context.
type Category string

const (
	CategoryNone    Category = "none"
	CategoryWeather Category = "weather"
	CategoryMap     Category = "map"
	CategoryNews    Category = "news"
	CategorySearch  Category = "search"
)

// ProviderResult is one discrete piece of retrieved information.
type ProviderResult struct {
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	URL         string `json:"url,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// IsEmpty reports whether the result carries nothing worth emitting.
func (r ProviderResult) IsEmpty() bool {
	return strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.Body) == ""
}

// ProviderOutput is what every provider adapter returns: the raw results plus
// the rendered block that goes into the prompt.
type ProviderOutput struct {
	Results []ProviderResult `json:"results"`
	Text    string           `json:"text"`
}

// IsEmpty is true when the adapter produced no usable context.
func (o *ProviderOutput) IsEmpty() bool {
	return o == nil || strings.TrimSpace(o.Text) == ""
}

// EnrichmentContext is the bounded text block injected into the model prompt.
type EnrichmentContext struct {
	Category Category         `json:"category"`
	Provider string           `json:"provider,omitempty"`
	Text     string           `json:"text"`
	Results  []ProviderResult `json:"results,omitempty"`
}

// HasContext is false for CategoryNone or blank text.
func (c EnrichmentContext) HasContext() bool {
	return c.Category != "" && c.Category != CategoryNone && strings.TrimSpace(c.Text) != ""
}

// EmptyContext is the result of a request that consulted no provider or got nothing back.
func EmptyContext() EnrichmentContext {
	return EnrichmentContext{Category: CategoryNone}
}

// Intent is the classifier output. Flags are independent; the orchestrator
// decides priority.
type Intent struct {
	Weather      bool   `json:"weather"`
	Map          bool   `json:"map"`
	Search       bool   `json:"search"`
	LocationHint string `json:"locationHint,omitempty"`
	City         string `json:"city,omitempty"`
	MapLocation  string `json:"mapLocation,omitempty"`
}

// Any reports whether at least one intent fired.
func (i Intent) Any() bool {
	return i.Weather || i.Map || i.Search
}
