// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialEnv = []string{
	"OPENWEATHER_API_KEY", "YANDEX_FOLDER_ID", "YANDEX_API_KEY", "YANDEX_AUTH_TOKEN",
	"GIGA_KEY", "GIGACHAT_CREDENTIALS", "GIGA_SCOPE", "MOJEEK_API_KEY", "BRAVE_API_KEY",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "ZEEBE_ADDRESS",
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	for _, name := range credentialEnv {
		t.Setenv(name, "")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Defaults
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  version: 2.0.0\n"))
	require.NoError(t, err)

	assert.Equal(t, "assistant-workers", cfg.App.Name)
	assert.Equal(t, "2.0.0", cfg.App.Version)
	assert.False(t, cfg.Camunda.Enabled)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30000, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "metric", cfg.Providers.Weather.Units)
	assert.Equal(t, "ru", cfg.Providers.Weather.Lang)
	assert.Len(t, cfg.Providers.News.Feeds, 3)
	assert.Equal(t, "ria", cfg.Providers.News.Feeds[0].Name)
	assert.Equal(t, 5, cfg.Providers.News.MaxItems)
	assert.Equal(t, 3, cfg.Providers.WebSearch.MaxResults)
	for _, name := range EngineOrder {
		engine, ok := cfg.Providers.WebSearch.Engines[name]
		require.True(t, ok, name)
		assert.True(t, engine.Enabled, name)
		assert.NotEmpty(t, engine.BaseURL, name)
	}

	assert.Equal(t, "yandexgpt", cfg.Models.Yandex.Model)
	assert.Equal(t, 5000, cfg.Models.Yandex.PollInterval)
	assert.False(t, cfg.Models.Yandex.Configured())
	assert.Equal(t, "GIGACHAT_API_PERS", cfg.Models.GigaChat.Scope)
	assert.False(t, cfg.Models.GigaChat.Configured())

	assert.Equal(t, "aggregate", cfg.Enrichment.SearchMode)
	assert.Equal(t, "ai:enrich:", cfg.Enrichment.Cache.Prefix)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_EngineOverridesKeepDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
providers:
  web_search:
    engines:
      brave:
        enabled: false
        timeout: 1500
`))
	require.NoError(t, err)

	brave := cfg.Providers.WebSearch.Engines[EngineBrave]
	assert.False(t, brave.Enabled)
	assert.Equal(t, 1500, brave.Timeout)
	assert.Equal(t, "https://api.search.brave.com/res/v1/web/search", brave.BaseURL)
	assert.True(t, cfg.Providers.WebSearch.Engines[EngineDuckDuckGo].Enabled)
}

// ==========================
// Environment
// ==========================

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	path := writeConfig(t, "app:\n  name: env-test\n")
	t.Setenv("OPENWEATHER_API_KEY", "owm")
	t.Setenv("YANDEX_FOLDER_ID", "b1g")
	t.Setenv("YANDEX_API_KEY", "ykey")
	t.Setenv("GIGACHAT_CREDENTIALS", "Z2lnYQ==")
	t.Setenv("GIGA_SCOPE", "GIGACHAT_API_CORP")
	t.Setenv("BRAVE_API_KEY", "brave")
	t.Setenv("ZEEBE_ADDRESS", "zeebe:26500")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "owm", cfg.Providers.Weather.APIKey)
	assert.True(t, cfg.Models.Yandex.Configured())
	assert.Equal(t, "Z2lnYQ==", cfg.Models.GigaChat.Credentials)
	assert.Equal(t, "GIGACHAT_API_CORP", cfg.Models.GigaChat.Scope)
	assert.Equal(t, "brave", cfg.Providers.WebSearch.Engines[EngineBrave].APIKey)
	assert.Empty(t, cfg.Providers.WebSearch.Engines[EngineMojeek].APIKey)
	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
}

func TestLoadFromFile_GigaKeyPreferred(t *testing.T) {
	path := writeConfig(t, "app:\n  name: env-test\n")
	t.Setenv("GIGA_KEY", "first")
	t.Setenv("GIGACHAT_CREDENTIALS", "second")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Models.GigaChat.Credentials)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	path := writeConfig(t, `
models:
  yandex:
    folder_id: ${TEST_FOLDER}
    auth_token: ${TEST_IAM}
`)
	t.Setenv("TEST_FOLDER", "b1gfolder")
	t.Setenv("TEST_IAM", "t1.iam")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b1gfolder", cfg.Models.Yandex.FolderID)
	assert.Equal(t, "t1.iam", cfg.Models.Yandex.AuthToken)
	assert.True(t, cfg.Models.Yandex.Configured())
}

func TestLoadFromFile_PlaceholdersKeepSiblingKeys(t *testing.T) {
	path := writeConfig(t, `
providers:
  web_search:
    engines:
      duckduckgo:
        enabled: true
      mojeek:
        enabled: true
        api_key: ${MOJEEK_API_KEY}
      metager:
        enabled: false
      brave:
        enabled: true
        api_key: ${BRAVE_API_KEY}
        timeout: 2500
`)
	t.Setenv("MOJEEK_API_KEY", "mk")
	t.Setenv("BRAVE_API_KEY", "bk")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	engines := cfg.Providers.WebSearch.Engines
	assert.True(t, engines[EngineDuckDuckGo].Enabled)
	assert.True(t, engines[EngineMojeek].Enabled)
	assert.Equal(t, "mk", engines[EngineMojeek].APIKey)
	assert.False(t, engines[EngineMetaGer].Enabled)
	assert.True(t, engines[EngineBrave].Enabled)
	assert.Equal(t, "bk", engines[EngineBrave].APIKey)
	assert.Equal(t, 2500, engines[EngineBrave].Timeout)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "camunda without broker",
			body:    "camunda:\n  enabled: true\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name:    "cache without redis",
			body:    "enrichment:\n  cache:\n    enabled: true\n",
			wantErr: "database.redis.address is required",
		},
		{
			name:    "unknown search mode",
			body:    "enrichment:\n  search_mode: fastest\n",
			wantErr: "enrichment.search_mode must be aggregate or inline",
		},
		{
			name:    "feed without url",
			body:    "providers:\n  news:\n    feeds:\n      - name: ria\n",
			wantErr: "providers.news.feeds entries need both name and url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFile_RepositoryConfig(t *testing.T) {
	for _, name := range credentialEnv {
		t.Setenv(name, "")
	}

	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	engines := cfg.Providers.WebSearch.Engines
	assert.True(t, engines[EngineDuckDuckGo].Enabled)
	assert.True(t, engines[EngineMojeek].Enabled)
	assert.False(t, engines[EngineMetaGer].Enabled)
	assert.True(t, engines[EngineBrave].Enabled)
	assert.True(t, cfg.Models.GigaChat.InsecureTLS)
	assert.Equal(t, 3, GetWorkerConfig(cfg, "llm-synthesis").MaxJobsActive)
}

// ==========================
// Helpers
// ==========================

func TestWorkerConfigHelpers(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
workers:
  fetch-weather:
    enabled: false
  llm-synthesis:
    enabled: true
    timeout: 90000
`))
	require.NoError(t, err)

	assert.False(t, IsWorkerEnabled(cfg, "fetch-weather"))
	assert.True(t, IsWorkerEnabled(cfg, "llm-synthesis"))
	assert.True(t, IsWorkerEnabled(cfg, "not-listed"))

	llm := GetWorkerConfig(cfg, "llm-synthesis")
	assert.Equal(t, 90000, llm.Timeout)
	assert.Equal(t, 5, llm.MaxJobsActive)
	assert.Equal(t, 3, llm.MaxRetries)

	def := GetWorkerConfig(cfg, "not-listed")
	assert.True(t, def.Enabled)
	assert.Equal(t, 30000, def.Timeout)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
