// internal/workers/ai-conversation/enrich-web-search/models.go
package enrichwebsearch

import "assistant-workers/internal/models"

type Input struct {
	Query      string `json:"query"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type Output struct {
	Search models.ProviderOutput `json:"search"`
}

type mojeekResponse struct {
	Results  []mojeekResult `json:"results"`
	Response struct {
		Results []mojeekResult `json:"results"`
	} `json:"response"`
}

type mojeekResult struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			Age         string `json:"age"`
		} `json:"results"`
	} `json:"web"`
}
