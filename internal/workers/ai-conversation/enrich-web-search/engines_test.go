// internal/workers/ai-conversation/enrich-web-search/engines_test.go
package enrichwebsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duckDuckGoPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result result--ad">
    <h2 class="result__title"><a class="result__a" href="https://ads.example.com">Sponsored</a></h2>
  </div>
  <div class="result results_links results_links_deep web-result">
    <div class="links_main links_deep result__body">
      <h2 class="result__title">
        <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa&amp;rut=abc">Example <b>A</b></a>
      </h2>
      <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa">Snippet <b>about</b>
        A</a>
      <span class="result__timestamp">2 hours ago</span>
    </div>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title"><a class="result__a" href="https://example.com/b">Example B</a></h2>
    <a class="result__snippet">Snippet B</a>
  </div>
  <div class="result web-result">
    <h2 class="result__title"><span>no link here</span></h2>
  </div>
</div>
</body></html>`

func engineSettings(name, baseURL, key string) EngineSettings {
	return EngineSettings{
		Name:      name,
		Enabled:   true,
		BaseURL:   baseURL,
		APIKey:    key,
		UserAgent: "Mozilla/5.0",
		Timeout:   time.Second,
	}
}

// ==========================
// DuckDuckGo
// ==========================

func TestDuckDuckGo_Text_ParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "курс рубля", r.URL.Query().Get("q"))
		assert.Empty(t, r.URL.Query().Get("iar"))
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	results, err := NewDuckDuckGo(engineSettings(EngineDuckDuckGo, server.URL, "")).Text(context.Background(), "курс рубля", 5)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Example A", results[0].Title)
	assert.Equal(t, "https://example.com/a", results[0].URL)
	assert.Equal(t, "Snippet about A", results[0].Body)
	assert.Equal(t, "2 hours ago", results[0].PublishedAt)
	assert.Equal(t, "DuckDuckGo", results[0].Source)
	assert.Equal(t, "https://example.com/b", results[1].URL)
}

func TestDuckDuckGo_Search_NewsThenText(t *testing.T) {
	var newsCalls, textCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("iar") == "news" {
			atomic.AddInt32(&newsCalls, 1)
			w.Write([]byte(`<html><body><div class="result"><a class="result__a" href="https://news.example.com/1">News 1</a></div></body></html>`))
			return
		}
		atomic.AddInt32(&textCalls, 1)
		w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	results, err := NewDuckDuckGo(engineSettings(EngineDuckDuckGo, server.URL, "")).Search(context.Background(), "q", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "DuckDuckGo News", results[0].Source)
	assert.Equal(t, "https://news.example.com/1", results[0].URL)
	assert.Equal(t, "https://example.com/a", results[1].URL)
	assert.EqualValues(t, 1, atomic.LoadInt32(&newsCalls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&textCalls))
}

func TestDuckDuckGo_Search_TopUpSkipsRepeatedURLs(t *testing.T) {
	var calls int32
	// the HTML endpoint serves the same page with or without iar=news
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(duckDuckGoPage))
	}))
	defer server.Close()

	results, err := NewDuckDuckGo(engineSettings(EngineDuckDuckGo, server.URL, "")).Search(context.Background(), "q", 3)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "https://example.com/a", results[0].URL)
	assert.Equal(t, "https://example.com/b", results[1].URL)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestDuckDuckGo_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewDuckDuckGo(engineSettings(EngineDuckDuckGo, server.URL, "")).Search(context.Background(), "q", 3)
	assert.Error(t, err)
}

func TestResolveDuckDuckGoLink(t *testing.T) {
	tests := []struct {
		href     string
		expected string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fria.ru%2Fx&rut=1", "https://ria.ru/x"},
		{"https://duckduckgo.com/l/?uddg=https%3A%2F%2Ftass.ru", "https://tass.ru"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveDuckDuckGoLink(tt.href))
		})
	}
}

// ==========================
// Mojeek & Brave
// ==========================

func TestMojeek_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "погода", q.Get("q"))
		assert.Equal(t, "json", q.Get("fmt"))
		assert.Equal(t, "3", q.Get("count"))
		assert.Equal(t, "mkey", q.Get("api_key"))
		w.Write([]byte(`{"response":{"results":[{"title":"M1","desc":"d1","url":"https://m1"}]}}`))
	}))
	defer server.Close()

	results, err := NewMojeek(engineSettings(EngineMojeek, server.URL, "mkey")).Search(context.Background(), "погода", 3)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "M1", results[0].Title)
	assert.Equal(t, "d1", results[0].Body)
	assert.Equal(t, "Mojeek", results[0].Source)
}

func TestMojeek_Search_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":`))
	}))
	defer server.Close()

	_, err := NewMojeek(engineSettings(EngineMojeek, server.URL, "mkey")).Search(context.Background(), "q", 3)
	assert.Error(t, err)
}

func TestBrave_Search(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "bkey", r.Header.Get("X-Subscription-Token"))
		w.Write([]byte(`{"web":{"results":[
			{"title":"B1","description":"<strong>bold</strong> text","url":"https://b1","age":"1 day ago"},
			{"title":"B2","description":"","url":"https://b2"}
		]}}`))
	}))
	defer server.Close()

	t.Run("without key", func(t *testing.T) {
		results, err := NewBrave(engineSettings(EngineBrave, server.URL, "")).Search(context.Background(), "q", 3)
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("with key", func(t *testing.T) {
		results, err := NewBrave(engineSettings(EngineBrave, server.URL, "bkey")).Search(context.Background(), "q", 1)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "bold text", results[0].Body)
		assert.Equal(t, "1 day ago", results[0].PublishedAt)
	})
}

// ==========================
// Engine Construction
// ==========================

func TestNewEngines(t *testing.T) {
	disabled := engineSettings(EngineBrave, "", "")
	disabled.Enabled = false

	engines := NewEngines([]EngineSettings{
		engineSettings(EngineDuckDuckGo, "http://ddg", ""),
		engineSettings(EngineMojeek, "http://mojeek", ""),
		engineSettings(EngineMetaGer, "http://metager", ""),
		disabled,
		engineSettings("altavista", "http://old", ""),
	}, NewTestLogger(t))

	require.Len(t, engines, 2)
	assert.Equal(t, EngineDuckDuckGo, engines[0].Name())
	assert.Equal(t, EngineMetaGer, engines[1].Name())

	results, err := engines[1].Search(context.Background(), "q", 3)
	assert.NoError(t, err)
	assert.Empty(t, results)
}
