// internal/workers/ai-conversation/fetch-news-feed/handler_test.go
package fetchnewsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{})  { l.t.Logf("INFO: %s %v", msg, fields) }
func (l *TestLogger) Warn(msg string, fields map[string]interface{})  { l.t.Logf("WARN: %s %v", msg, fields) }
func (l *TestLogger) Error(msg string, fields map[string]interface{}) { l.t.Logf("ERROR: %s %v", msg, fields) }
func (l *TestLogger) With(fields map[string]interface{}) Logger       { return l }

// ==========================
// Test Helper Functions
// ==========================

type rssItem struct {
	title, link, description, pubDate string
}

func rssFeed(items ...rssItem) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test</title>`)
	for _, it := range items {
		b.WriteString("<item>")
		if it.title != "" {
			fmt.Fprintf(&b, "<title>%s</title>", it.title)
		}
		if it.link != "" {
			fmt.Fprintf(&b, "<link>%s</link>", it.link)
		}
		if it.description != "" {
			fmt.Fprintf(&b, "<description><![CDATA[%s]]></description>", it.description)
		}
		if it.pubDate != "" {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.pubDate)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func numberedItems(prefix string, n int) []rssItem {
	items := make([]rssItem, n)
	for i := range items {
		items[i] = rssItem{
			title:       fmt.Sprintf("%s новость %d", prefix, i+1),
			link:        fmt.Sprintf("https://%s.example/%d", prefix, i+1),
			description: "текст",
		}
	}
	return items
}

func feedServer(t *testing.T, bodies map[string]string, statuses map[string]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		name := strings.TrimPrefix(r.URL.Path, "/")
		if status, ok := statuses[name]; ok {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(bodies[name]))
	}))
}

func createTestConfig(baseURL string) *Config {
	cfg := LoadConfig()
	cfg.Feeds = []Feed{
		{Name: "ria", URL: baseURL + "/ria"},
		{Name: "tass", URL: baseURL + "/tass"},
		{Name: "interfax", URL: baseURL + "/interfax"},
	}
	cfg.Timeout = time.Second
	return cfg
}

func newTestHandler(t *testing.T, baseURL string) *Handler {
	h := NewHandler(createTestConfig(baseURL), &TestLogger{t: t})
	h.now = func() time.Time { return time.Date(2025, 11, 24, 7, 45, 0, 0, time.UTC) }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_FetchN_Render(t *testing.T) {
	server := feedServer(t, map[string]string{
		"ria": rssFeed(rssItem{
			title:       "Заголовок",
			link:        "https://ria.ru/1",
			description: "<p>Описание <b>новости</b></p>",
			pubDate:     "Mon, 24 Nov 2025 10:00:00 +0300",
		}),
		"tass":     rssFeed(),
		"interfax": rssFeed(),
	}, nil)
	defer server.Close()

	out, err := newTestHandler(t, server.URL).FetchN(context.Background(), 5)
	require.NoError(t, err)

	expected := "\n📰 СВЕЖИЕ НОВОСТИ (24.11.2025 07:45):\n" +
		"\n\n1. **Заголовок**\n" +
		"   Источник: RIA\n" +
		"   Дата: Mon, 24 Nov 2025 10:00:00 +0300\n" +
		"   Описание новости\n" +
		"   🔗 https://ria.ru/1\n" +
		"\n⚠️ Актуальные новости на 24.11.2025 07:45"
	assert.Equal(t, expected, out.Text)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "RIA", out.Results[0].Source)
}

func TestHandler_FetchN_PerFeedAndTotalCaps(t *testing.T) {
	server := feedServer(t, map[string]string{
		"ria":      rssFeed(numberedItems("ria", 8)...),
		"tass":     rssFeed(numberedItems("tass", 8)...),
		"interfax": rssFeed(numberedItems("interfax", 8)...),
	}, nil)
	defer server.Close()

	out, err := newTestHandler(t, server.URL).FetchN(context.Background(), 3)
	require.NoError(t, err)

	// 3 per feed, 6 overall, feed order kept
	require.Len(t, out.Results, 6)
	assert.Equal(t, "RIA", out.Results[0].Source)
	assert.Equal(t, "RIA", out.Results[2].Source)
	assert.Equal(t, "TASS", out.Results[3].Source)
	assert.Equal(t, "TASS", out.Results[5].Source)
	assert.NotContains(t, out.Text, "INTERFAX")
}

func TestHandler_FetchN_PartialSuccess(t *testing.T) {
	server := feedServer(t, map[string]string{
		"tass":     "<not-xml",
		"interfax": rssFeed(numberedItems("interfax", 2)...),
	}, map[string]int{"ria": http.StatusServiceUnavailable})
	defer server.Close()

	out, err := newTestHandler(t, server.URL).FetchN(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "INTERFAX", out.Results[0].Source)
}

func TestHandler_FetchN_AllFeedsFail(t *testing.T) {
	server := feedServer(t, nil, map[string]int{
		"ria": http.StatusInternalServerError, "tass": http.StatusNotFound, "interfax": http.StatusBadGateway,
	})
	defer server.Close()

	out, err := newTestHandler(t, server.URL).FetchN(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

// ==========================
// Edge Cases
// ==========================

func TestHandler_FetchN_ItemRules(t *testing.T) {
	long := strings.Repeat("слово ", 100)
	server := feedServer(t, map[string]string{
		"ria": rssFeed(
			rssItem{link: "https://ria.ru/untitled"},
			rssItem{title: "только заголовок"},
			rssItem{title: "длинная", link: "https://ria.ru/long", description: long},
		),
		"tass":     rssFeed(),
		"interfax": rssFeed(),
	}, nil)
	defer server.Close()

	out, err := newTestHandler(t, server.URL).FetchN(context.Background(), 5)
	require.NoError(t, err)

	// the title-only item has neither url nor body and is dropped
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Без заголовка", out.Results[0].Title)
	assert.LessOrEqual(t, utf8.RuneCountInString(out.Results[1].Body), 303)
	assert.True(t, strings.HasSuffix(out.Results[1].Body, "..."))
}
