// internal/app/app_test.go
package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"assistant-workers/internal/common/config"
	"assistant-workers/internal/common/database"
	"assistant-workers/internal/common/logger"
	"assistant-workers/internal/models"
	"assistant-workers/pkg/registry"

	ews "assistant-workers/internal/workers/ai-conversation/enrich-web-search"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
app:
  name: assistant-workers-test
providers:
  weather:
    timeout: 1500
  web_search:
    max_results: 4
    request_interval: 250
    engines:
      brave:
        enabled: false
      mojeek:
        enabled: true
        api_key: mkey
models:
  yandex:
    poll_interval: 2000
    timeout: 90000
  gigachat:
    credentials: Y2xpZW50OnNlY3JldA==
enrichment:
  search_mode: inline
  cache:
    enabled: true
    ttl: 60000
`

func clearCredentialEnv(t *testing.T) {
	for _, name := range []string{
		"OPENWEATHER_API_KEY", "YANDEX_FOLDER_ID", "YANDEX_API_KEY", "YANDEX_AUTH_TOKEN",
		"GIGA_KEY", "GIGACHAT_CREDENTIALS", "MOJEEK_API_KEY", "BRAVE_API_KEY", "REDIS_ADDRESS",
	} {
		t.Setenv(name, "")
	}
}

func loadTestConfig(t *testing.T, redisAddr string) *config.Config {
	t.Helper()
	clearCredentialEnv(t)
	t.Setenv("REDIS_ADDRESS", redisAddr)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	return cfg
}

// ==========================
// Config Translation Tests
// ==========================

func TestSearchConfig_EngineOrder(t *testing.T) {
	cfg := loadTestConfig(t, "localhost:6379")

	sc := SearchConfig(cfg)

	require.Len(t, sc.Engines, 4)
	names := make([]string, 0, len(sc.Engines))
	for _, e := range sc.Engines {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{ews.EngineDuckDuckGo, ews.EngineMojeek, ews.EngineMetaGer, ews.EngineBrave}, names)
	assert.False(t, sc.Engines[3].Enabled)
	assert.Equal(t, "mkey", sc.Engines[1].APIKey)
	assert.Equal(t, ews.ModeInline, sc.Mode)
	assert.Equal(t, 4, sc.MaxResults)
	assert.Equal(t, 250*time.Millisecond, sc.RequestInterval)
}

func TestSynthesisConfig(t *testing.T) {
	cfg := loadTestConfig(t, "localhost:6379")

	sc := SynthesisConfig(cfg)

	assert.Equal(t, 2*time.Second, sc.Yandex.PollInterval)
	assert.Equal(t, 90*time.Second, sc.Yandex.Timeout)
	assert.Equal(t, 90*time.Second, sc.Timeout)
	assert.False(t, sc.Yandex.Configured())
	assert.True(t, sc.GigaChat.Configured())
	assert.Equal(t, "GIGACHAT_API_PERS", sc.GigaChat.Scope)
	assert.Equal(t, 4000, sc.GigaChat.MaxReplyChars)
}

func TestProviderConfigs(t *testing.T) {
	cfg := loadTestConfig(t, "localhost:6379")

	assert.Equal(t, 1500*time.Millisecond, WeatherConfig(cfg).Timeout)
	assert.Equal(t, "ru", WeatherConfig(cfg).Lang)
	assert.Equal(t, "https://nominatim.openstreetmap.org", GeocodingConfig(cfg).BaseURL)
	assert.Len(t, NewsConfig(cfg).Feeds, 3)
	assert.Equal(t, time.Minute, EnrichConfig(cfg).CacheTTL)
}

// ==========================
// Wiring Tests
// ==========================

func TestNew_ModelAvailability(t *testing.T) {
	cfg := loadTestConfig(t, "localhost:6379")

	a := New(cfg, logger.NewTestLogger(t), Options{})

	assert.True(t, a.Synthesis.Available(models.ModelGigaChat))
	assert.False(t, a.Synthesis.Available(models.ModelYandexGPT))

	m, ok := a.Synthesis.DefaultModel()
	require.True(t, ok)
	assert.Equal(t, models.ModelGigaChat, m)
	assert.Contains(t, a.Messages.Status(), "🟢 GigaChat: ✅ Активна")
}

func TestNew_NoIntentNoProviderCalls(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := loadTestConfig(t, mr.Addr())
	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	a := New(cfg, logger.NewTestLogger(t), Options{Redis: rdb})

	ec := a.Enrich.Enrich(context.Background(), "Привет, расскажи анекдот", "ivan")
	assert.Equal(t, models.CategoryNone, ec.Category)
	assert.Empty(t, mr.Keys())
}

func TestWorkers_MatchTaskTypes(t *testing.T) {
	cfg := loadTestConfig(t, "localhost:6379")

	a := New(cfg, logger.NewTestLogger(t), Options{})

	workers := a.Workers()
	require.Len(t, workers, len(TaskTypes()))
	for i, w := range workers {
		assert.Equal(t, TaskTypes()[i], w.TaskType)
		assert.NotNil(t, w.Handler, w.TaskType)
	}
}

func TestActivityRegistry_CoversWorkers(t *testing.T) {
	reg, err := registry.LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)

	assert.NoError(t, reg.Validate(TaskTypes()))
}
