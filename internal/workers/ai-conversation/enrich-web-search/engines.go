// internal/workers/ai-conversation/enrich-web-search/engines.go
package enrichwebsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "assistant-workers/internal/common/errors"
	httpclient "assistant-workers/internal/common/http"
	"assistant-workers/internal/models"

	"golang.org/x/net/html"
)

// Engine is one search backend. Search returns at most limit results; an
// engine with nothing to say returns an empty slice and a nil error.
type Engine interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]models.ProviderResult, error)
}

// newsTextEngine is implemented by engines that can search news and the
// general web separately.
type newsTextEngine interface {
	News(ctx context.Context, query string, limit int) ([]models.ProviderResult, error)
	Text(ctx context.Context, query string, limit int) ([]models.ProviderResult, error)
}

// NewEngines builds the enabled engines in priority order. Engines that
// need a key and have none are left out.
func NewEngines(settings []EngineSettings, log Logger) []Engine {
	engines := make([]Engine, 0, len(settings))
	for _, s := range settings {
		if !s.Enabled {
			continue
		}

		switch s.Name {
		case EngineDuckDuckGo:
			engines = append(engines, NewDuckDuckGo(s))
		case EngineMojeek:
			if s.APIKey == "" {
				log.Warn("search engine excluded", map[string]interface{}{
					"engine": s.Name,
					"error":  apperrors.NewConfigurationMissingError(s.Name, "api_key").Error(),
				})
				continue
			}
			engines = append(engines, NewMojeek(s))
		case EngineMetaGer:
			engines = append(engines, NewMetaGer(s))
		case EngineBrave:
			engines = append(engines, NewBrave(s))
		default:
			log.Warn("unknown search engine", map[string]interface{}{
				"engine": s.Name,
			})
		}
	}
	return engines
}

// ==========================
// DuckDuckGo
// ==========================

// DuckDuckGo scrapes the HTML endpoint. Search tries news first and tops up
// with general results when news is short.
type DuckDuckGo struct {
	settings EngineSettings
	client   *httpclient.Client
}

func NewDuckDuckGo(s EngineSettings) *DuckDuckGo {
	return &DuckDuckGo{
		settings: s,
		client:   httpclient.NewClientWithUserAgent(s.Timeout, s.UserAgent),
	}
}

func (d *DuckDuckGo) Name() string { return EngineDuckDuckGo }

// Search tops up thin news with text results. The HTML endpoint does not
// honour iar=news, so only URLs the news pass missed are added.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]models.ProviderResult, error) {
	results, newsErr := d.News(ctx, query, limit)
	if len(results) < limit {
		text, err := d.Text(ctx, query, limit)
		if err != nil && newsErr != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(results))
		for _, r := range results {
			seen[r.URL] = struct{}{}
		}
		for _, r := range text {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			results = append(results, r)
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (d *DuckDuckGo) News(ctx context.Context, query string, limit int) ([]models.ProviderResult, error) {
	return d.query(ctx, query, limit, url.Values{"iar": {"news"}}, "DuckDuckGo News")
}

func (d *DuckDuckGo) Text(ctx context.Context, query string, limit int) ([]models.ProviderResult, error) {
	return d.query(ctx, query, limit, nil, "DuckDuckGo")
}

func (d *DuckDuckGo) query(ctx context.Context, query string, limit int, extra url.Values, source string) ([]models.ProviderResult, error) {
	params := url.Values{"q": {query}, "kl": {"ru-ru"}}
	for k, v := range extra {
		params[k] = v
	}

	resp, err := d.client.Get(ctx, d.settings.BaseURL, params, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned %d", resp.StatusCode)
	}

	return parseDuckDuckGoHTML(resp.Body, source, limit)
}

func parseDuckDuckGoHTML(body []byte, source string, limit int) ([]models.ProviderResult, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo page: %w", err)
	}

	var results []models.ProviderResult
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if hasClass(n, "result--ad") {
				return
			}
			if r, ok := parseResultNode(n, source); ok {
				results = append(results, r)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

func parseResultNode(n *html.Node, source string) (models.ProviderResult, bool) {
	r := models.ProviderResult{Source: source}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case hasClass(n, "result__a") && r.URL == "":
				r.Title = textContent(n)
				r.URL = resolveDuckDuckGoLink(attr(n, "href"))
				return
			case hasClass(n, "result__snippet") && r.Body == "":
				r.Body = textContent(n)
				return
			case hasClass(n, "result__timestamp") && r.PublishedAt == "":
				r.PublishedAt = textContent(n)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return r, r.URL != ""
}

// resolveDuckDuckGoLink unwraps the //duckduckgo.com/l/?uddg= redirect.
func resolveDuckDuckGoLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// ==========================
// Mojeek
// ==========================

type Mojeek struct {
	settings EngineSettings
	client   *httpclient.Client
}

func NewMojeek(s EngineSettings) *Mojeek {
	return &Mojeek{
		settings: s,
		client:   httpclient.NewClientWithUserAgent(s.Timeout, s.UserAgent),
	}
}

func (m *Mojeek) Name() string { return EngineMojeek }

func (m *Mojeek) Search(ctx context.Context, query string, limit int) ([]models.ProviderResult, error) {
	resp, err := m.client.Get(ctx, m.settings.BaseURL, url.Values{
		"q":       {query},
		"fmt":     {"json"},
		"count":   {strconv.Itoa(limit)},
		"api_key": {m.settings.APIKey},
	}, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mojeek returned %d", resp.StatusCode)
	}

	var payload mojeekResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode mojeek response: %w", err)
	}

	items := payload.Results
	if len(items) == 0 {
		items = payload.Response.Results
	}

	results := make([]models.ProviderResult, 0, len(items))
	for _, item := range items {
		results = append(results, models.ProviderResult{
			Title:       item.Title,
			Body:        item.Desc,
			URL:         item.URL,
			Source:      "Mojeek",
			PublishedAt: item.Date,
		})
	}
	return results, nil
}

// ==========================
// MetaGer
// ==========================

// MetaGer only serves HTML meant for browsers; it is kept in the chain as a
// placeholder and contributes nothing.
type MetaGer struct {
	settings EngineSettings
}

func NewMetaGer(s EngineSettings) *MetaGer {
	return &MetaGer{settings: s}
}

func (m *MetaGer) Name() string { return EngineMetaGer }

func (m *MetaGer) Search(ctx context.Context, _ string, _ int) ([]models.ProviderResult, error) {
	return nil, ctx.Err()
}

// ==========================
// Brave
// ==========================

// Brave calls the Web Search API when a subscription token is configured
// and returns nothing otherwise.
type Brave struct {
	settings EngineSettings
	client   *httpclient.Client
}

func NewBrave(s EngineSettings) *Brave {
	return &Brave{
		settings: s,
		client:   httpclient.NewClientWithUserAgent(s.Timeout, s.UserAgent),
	}
}

func (b *Brave) Name() string { return EngineBrave }

func (b *Brave) Search(ctx context.Context, query string, limit int) ([]models.ProviderResult, error) {
	if b.settings.APIKey == "" {
		return nil, nil
	}

	resp, err := b.client.Get(ctx, b.settings.BaseURL, url.Values{
		"q":     {query},
		"count": {strconv.Itoa(limit)},
	}, map[string]string{
		"Accept":               "application/json",
		"X-Subscription-Token": b.settings.APIKey,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave returned %d", resp.StatusCode)
	}

	var payload braveResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}

	results := make([]models.ProviderResult, 0, len(payload.Web.Results))
	for _, item := range payload.Web.Results {
		results = append(results, models.ProviderResult{
			Title:       item.Title,
			Body:        models.StripTags(item.Description),
			URL:         item.URL,
			Source:      "Brave",
			PublishedAt: item.Age,
		})
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
