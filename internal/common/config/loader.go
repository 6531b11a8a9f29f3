// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Engine names in aggregator priority order.
const (
	EngineDuckDuckGo = "duckduckgo"
	EngineMojeek     = "mojeek"
	EngineMetaGer    = "metager"
	EngineBrave      = "brave"
)

// EngineOrder is the fixed sequence the web-search aggregator queries engines in.
var EngineOrder = []string{EngineDuckDuckGo, EngineMojeek, EngineMetaGer, EngineBrave}

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// PROVIDERS_WEATHER_API_KEY overrides providers.weather.api_key
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig() // optional

	var cfg Config
	if err := viper.Unmarshal(&cfg, decodeHooks()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHooks()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking from the working directory
// towards the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// decodeHooks expands ${VAR} placeholders while decoding. Values are never
// written back through Set: a Set on a nested key shadows its sibling keys.
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.DecodeHookFuncType(expandEnvHook),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func expandEnvHook(from reflect.Type, _ reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s, ok := data.(string)
	if !ok {
		return data, nil
	}
	return expandEnv(s), nil
}

func expandEnv(s string) string {
	if strings.Contains(s, "${") || (strings.HasPrefix(s, "$") && len(s) > 1) {
		return os.ExpandEnv(s)
	}
	return s
}

// firstEnv returns the first non-empty environment variable among names.
func firstEnv(names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return ""
}

// overrideEmptyConfig fills credentials from the well-known environment
// variables when the config file left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Providers.Weather.APIKey == "" {
		cfg.Providers.Weather.APIKey = firstEnv("OPENWEATHER_API_KEY")
	}

	if cfg.Models.Yandex.FolderID == "" {
		cfg.Models.Yandex.FolderID = firstEnv("YANDEX_FOLDER_ID")
	}
	if cfg.Models.Yandex.APIKey == "" {
		cfg.Models.Yandex.APIKey = firstEnv("YANDEX_API_KEY")
	}
	if cfg.Models.Yandex.AuthToken == "" {
		cfg.Models.Yandex.AuthToken = firstEnv("YANDEX_AUTH_TOKEN")
	}

	if cfg.Models.GigaChat.Credentials == "" {
		cfg.Models.GigaChat.Credentials = firstEnv("GIGA_KEY", "GIGACHAT_CREDENTIALS")
	}

	for name, envName := range map[string]string{
		EngineMojeek: "MOJEEK_API_KEY",
		EngineBrave:  "BRAVE_API_KEY",
	} {
		engine := cfg.Providers.WebSearch.Engines[name]
		if engine.APIKey == "" {
			if val := firstEnv(envName); val != "" {
				engine.APIKey = val
				cfg.Providers.WebSearch.Engines[name] = engine
			}
		}
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = firstEnv("REDIS_ADDRESS")
	}
	if cfg.Database.Redis.Password == "" {
		cfg.Database.Redis.Password = firstEnv("REDIS_PASSWORD")
	}

	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = firstEnv("ZEEBE_ADDRESS")
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "assistant-workers"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Workers == nil {
		cfg.Workers = make(map[string]WorkerConfig)
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	applyProviderDefaults(&cfg.Providers)
	applyModelDefaults(&cfg.Models)

	if cfg.Enrichment.SearchMode == "" {
		cfg.Enrichment.SearchMode = "aggregate"
	}
	if cfg.Enrichment.Cache.TTL == 0 {
		cfg.Enrichment.Cache.TTL = 300000
	}
	if cfg.Enrichment.Cache.Prefix == "" {
		cfg.Enrichment.Cache.Prefix = "ai:enrich:"
	}
}

func applyProviderDefaults(p *ProvidersConfig) {
	if p.Weather.BaseURL == "" {
		p.Weather.BaseURL = "http://api.openweathermap.org"
	}
	if p.Weather.Units == "" {
		p.Weather.Units = "metric"
	}
	if p.Weather.Lang == "" {
		p.Weather.Lang = "ru"
	}
	if p.Weather.Timeout == 0 {
		p.Weather.Timeout = 5000
	}

	if p.Geocoding.BaseURL == "" {
		p.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if p.Geocoding.UserAgent == "" {
		p.Geocoding.UserAgent = "AssistantWorkers/1.0"
	}
	if p.Geocoding.Timeout == 0 {
		p.Geocoding.Timeout = 5000
	}

	if len(p.News.Feeds) == 0 {
		p.News.Feeds = []FeedConfig{
			{Name: "ria", URL: "https://ria.ru/export/rss2/archive/index.xml"},
			{Name: "tass", URL: "https://tass.ru/rss/v2.xml"},
			{Name: "interfax", URL: "https://www.interfax.ru/rss.asp"},
		}
	}
	if p.News.MaxItems == 0 {
		p.News.MaxItems = 5
	}
	if p.News.UserAgent == "" {
		p.News.UserAgent = "Mozilla/5.0"
	}
	if p.News.Timeout == 0 {
		p.News.Timeout = 10000
	}

	if p.WebSearch.MaxResults == 0 {
		p.WebSearch.MaxResults = 3
	}
	if p.WebSearch.RequestInterval == 0 {
		p.WebSearch.RequestInterval = 100
	}
	if p.WebSearch.Engines == nil {
		p.WebSearch.Engines = make(map[string]EngineConfig)
	}
	defaults := map[string]EngineConfig{
		EngineDuckDuckGo: {Enabled: true, BaseURL: "https://html.duckduckgo.com/html/", UserAgent: "Mozilla/5.0", Timeout: 5000},
		EngineMojeek:     {Enabled: true, BaseURL: "https://api.mojeek.com/search", Timeout: 5000},
		EngineMetaGer:    {Enabled: true, BaseURL: "https://metager.org/meta/meta.ger3", Timeout: 5000},
		EngineBrave:      {Enabled: true, BaseURL: "https://api.search.brave.com/res/v1/web/search", Timeout: 5000},
	}
	for name, def := range defaults {
		engine, ok := p.WebSearch.Engines[name]
		if !ok {
			p.WebSearch.Engines[name] = def
			continue
		}
		if engine.BaseURL == "" {
			engine.BaseURL = def.BaseURL
		}
		if engine.UserAgent == "" {
			engine.UserAgent = def.UserAgent
		}
		if engine.Timeout == 0 {
			engine.Timeout = def.Timeout
		}
		p.WebSearch.Engines[name] = engine
	}
}

func applyModelDefaults(m *ModelsConfig) {
	if m.Yandex.BaseURL == "" {
		m.Yandex.BaseURL = "https://llm.api.cloud.yandex.net"
	}
	if m.Yandex.OperationURL == "" {
		m.Yandex.OperationURL = "https://operation.api.cloud.yandex.net"
	}
	if m.Yandex.Model == "" {
		m.Yandex.Model = "yandexgpt"
	}
	if m.Yandex.Temperature == 0 {
		m.Yandex.Temperature = 0.5
	}
	if m.Yandex.MaxTokens == 0 {
		m.Yandex.MaxTokens = 2000
	}
	if m.Yandex.PollInterval == 0 {
		m.Yandex.PollInterval = 5000
	}
	if m.Yandex.Timeout == 0 {
		m.Yandex.Timeout = 120000
	}

	if m.GigaChat.BaseURL == "" {
		m.GigaChat.BaseURL = "https://gigachat.devices.sberbank.ru/api/v1"
	}
	if m.GigaChat.AuthURL == "" {
		m.GigaChat.AuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	}
	if m.GigaChat.Scope == "" {
		m.GigaChat.Scope = firstEnv("GIGA_SCOPE")
	}
	if m.GigaChat.Scope == "" {
		m.GigaChat.Scope = "GIGACHAT_API_PERS"
	}
	if m.GigaChat.Model == "" {
		m.GigaChat.Model = "GigaChat"
	}
	if m.GigaChat.Temperature == 0 {
		m.GigaChat.Temperature = 0.7
	}
	if m.GigaChat.MaxTokens == 0 {
		m.GigaChat.MaxTokens = 1024
	}
	if m.GigaChat.MaxReplyChars == 0 {
		m.GigaChat.MaxReplyChars = 4000
	}
	if m.GigaChat.Timeout == 0 {
		m.GigaChat.Timeout = 60000
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda.enabled is set")
	}

	if cfg.Enrichment.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when enrichment.cache.enabled is set")
	}

	switch cfg.Enrichment.SearchMode {
	case "aggregate", "inline":
	default:
		return fmt.Errorf("enrichment.search_mode must be aggregate or inline, got %q", cfg.Enrichment.SearchMode)
	}

	for _, feed := range cfg.Providers.News.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return fmt.Errorf("providers.news.feeds entries need both name and url")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}

	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
