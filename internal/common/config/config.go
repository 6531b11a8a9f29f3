// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Server     ServerConfig            `mapstructure:"server"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Providers  ProvidersConfig         `mapstructure:"providers"`
	Models     ModelsConfig            `mapstructure:"models"`
	Enrichment EnrichmentConfig        `mapstructure:"enrichment"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// ServerConfig is the health/metrics/API listener.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Provider Configuration ---

// ProvidersConfig holds the live-information sources.
type ProvidersConfig struct {
	Weather   WeatherConfig   `mapstructure:"weather"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	News      NewsConfig      `mapstructure:"news"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

type WeatherConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Units   string `mapstructure:"units"`
	Lang    string `mapstructure:"lang"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type GeocodingConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

type NewsConfig struct {
	Feeds     []FeedConfig `mapstructure:"feeds"`
	MaxItems  int          `mapstructure:"max_items"`
	UserAgent string       `mapstructure:"user_agent"`
	Timeout   int          `mapstructure:"timeout"` // milliseconds
}

type FeedConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type WebSearchConfig struct {
	MaxResults      int                     `mapstructure:"max_results"`
	Parallel        bool                    `mapstructure:"parallel"`
	RequestInterval int                     `mapstructure:"request_interval"` // milliseconds between calls to one engine
	Engines         map[string]EngineConfig `mapstructure:"engines"`
}

type EngineConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// --- Model Configuration ---

type ModelsConfig struct {
	Yandex   YandexConfig   `mapstructure:"yandex"`
	GigaChat GigaChatConfig `mapstructure:"gigachat"`
}

type YandexConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	OperationURL string  `mapstructure:"operation_url"`
	FolderID     string  `mapstructure:"folder_id"`
	APIKey       string  `mapstructure:"api_key"`
	AuthToken    string  `mapstructure:"auth_token"`
	Model        string  `mapstructure:"model"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	PollInterval int     `mapstructure:"poll_interval"` // milliseconds
	Timeout      int     `mapstructure:"timeout"`       // milliseconds
}

// Configured reports whether enough credentials are present to call the backend.
func (y YandexConfig) Configured() bool {
	return y.FolderID != "" && (y.APIKey != "" || y.AuthToken != "")
}

type GigaChatConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	AuthURL       string  `mapstructure:"auth_url"`
	Credentials   string  `mapstructure:"credentials"`
	Scope         string  `mapstructure:"scope"`
	Model         string  `mapstructure:"model"`
	Temperature   float64 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	MaxReplyChars int     `mapstructure:"max_reply_chars"`
	InsecureTLS   bool    `mapstructure:"insecure_tls"`
	Timeout       int     `mapstructure:"timeout"` // milliseconds
}

func (g GigaChatConfig) Configured() bool {
	return g.Credentials != ""
}

// --- Enrichment Configuration ---

type EnrichmentConfig struct {
	SearchMode string      `mapstructure:"search_mode"` // "aggregate" or "inline"
	Cache      CacheConfig `mapstructure:"cache"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // milliseconds
	Prefix  string `mapstructure:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
