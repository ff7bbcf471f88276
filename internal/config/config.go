package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Airtable  AirtableConfig  `yaml:"airtable" mapstructure:"airtable"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Instagram InstagramConfig `yaml:"instagram" mapstructure:"instagram"`
	Reconcile ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AirtableConfig holds record store credentials and table coordinates.
type AirtableConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseID        string  `yaml:"base_id" mapstructure:"base_id"`
	Table         string  `yaml:"table" mapstructure:"table"`
	StatusOptions string  `yaml:"status_options" mapstructure:"status_options"`
	RateRPS       float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
}

// StatusOptionList splits the comma-separated status option override,
// trimming whitespace. Empty entries are dropped.
func (a AirtableConfig) StatusOptionList() []string {
	var out []string
	for _, s := range strings.Split(a.StatusOptions, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	Country       string `yaml:"country" mapstructure:"country"`
	PhotoMaxWidth int    `yaml:"photo_max_width" mapstructure:"photo_max_width"`
}

// AnthropicConfig holds the description generator settings. An empty key
// disables description generation without affecting anything else.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// InstagramConfig configures profile link discovery on venue websites.
type InstagramConfig struct {
	Enabled     bool `yaml:"enabled" mapstructure:"enabled"`
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ReconcileConfig configures the enrichment sweep.
type ReconcileConfig struct {
	BatchSize    int  `yaml:"batch_size" mapstructure:"batch_size"`
	DelayMillis  int  `yaml:"delay_millis" mapstructure:"delay_millis"`
	ForceRefresh bool `yaml:"force_refresh" mapstructure:"force_refresh"`
	Once         bool `yaml:"once" mapstructure:"once"`
}

// CacheConfig configures the profile-link cache. An empty path keeps the
// cache in memory for the duration of a single run.
type CacheConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	TTLHours int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// ServerConfig configures the read-only feed server.
type ServerConfig struct {
	Port        int `yaml:"port" mapstructure:"port"`
	FeedTTLSecs int `yaml:"feed_ttl_secs" mapstructure:"feed_ttl_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key gets one, even if empty: viper's Unmarshal only
	// decodes keys it already knows about, so an env-only value for a key
	// with no default would never reach the struct.
	v.SetDefault("airtable.key", "")
	v.SetDefault("airtable.base_id", "")
	v.SetDefault("airtable.table", "Venues")
	v.SetDefault("airtable.status_options", "pending,enriched,not_found,error")
	v.SetDefault("airtable.rate_rps", 4)
	v.SetDefault("places.key", "")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("places.country", "UK")
	v.SetDefault("places.photo_max_width", 1200)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 300)
	v.SetDefault("instagram.enabled", true)
	v.SetDefault("instagram.timeout_secs", 12)
	v.SetDefault("reconcile.batch_size", 10)
	v.SetDefault("reconcile.delay_millis", 1500)
	v.SetDefault("reconcile.force_refresh", false)
	v.SetDefault("reconcile.once", false)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.feed_ttl_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
