package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Feeds     []model.FeedConfig `yaml:"feeds" mapstructure:"feeds"`
	FeedsFile string             `yaml:"feeds_file" mapstructure:"feeds_file"`
	Markets   []string           `yaml:"markets" mapstructure:"markets"`
	Fetch     FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	Logo      LogoConfig         `yaml:"logo" mapstructure:"logo"`
	Classify  ClassifyConfig     `yaml:"classify" mapstructure:"classify"`
	Dedup     DedupConfig        `yaml:"dedup" mapstructure:"dedup"`
	Store     StoreConfig        `yaml:"store" mapstructure:"store"`
	Output    OutputConfig       `yaml:"output" mapstructure:"output"`
	Log       LogConfig          `yaml:"log" mapstructure:"log"`
}

// FetchConfig configures the fetch stage.
type FetchConfig struct {
	MaxPages           int `yaml:"max_pages" mapstructure:"max_pages"`
	PageSize           int `yaml:"page_size" mapstructure:"page_size"`
	PageDelayMillis    int `yaml:"page_delay_millis" mapstructure:"page_delay_millis"`
	CheckpointInterval int `yaml:"checkpoint_interval" mapstructure:"checkpoint_interval"` // pages between checkpoint writes
	TimeoutSecs        int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LogoConfig configures the logo resolution stage.
type LogoConfig struct {
	BatchSize        int    `yaml:"batch_size" mapstructure:"batch_size"`
	ProbeTimeoutSecs int    `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	MinImageBytes    int    `yaml:"min_image_bytes" mapstructure:"min_image_bytes"`
	SourceDelayMs    int    `yaml:"source_delay_ms" mapstructure:"source_delay_ms"`
	PaidServiceKey   string `yaml:"paid_service_key" mapstructure:"paid_service_key"`
}

// ClassifyConfig configures the paid LLM category classification pass.
type ClassifyConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// DedupConfig carries the dedup tie-break policy. The ranking signal is a
// business choice, so it stays configurable rather than hard-coded.
type DedupConfig struct {
	WithinMarketKeys []string `yaml:"within_market_keys" mapstructure:"within_market_keys"`
}

// StoreConfig configures the cross-run cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OutputConfig configures artifact locations.
type OutputConfig struct {
	DataDir   string `yaml:"data_dir" mapstructure:"data_dir"`
	PublicDir string `yaml:"public_dir" mapstructure:"public_dir"`
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
	v.SetEnvPrefix("BRANDSWITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("markets", []string{"us", "uk", "de"})
	v.SetDefault("fetch.max_pages", 200)
	v.SetDefault("fetch.page_size", 500)
	v.SetDefault("fetch.page_delay_millis", 1000)
	v.SetDefault("fetch.checkpoint_interval", 5)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("logo.batch_size", 30)
	v.SetDefault("logo.probe_timeout_secs", 8)
	v.SetDefault("logo.min_image_bytes", 200)
	v.SetDefault("logo.source_delay_ms", 300)
	v.SetDefault("classify.model", "claude-haiku-4-5-20251001")
	v.SetDefault("classify.batch_size", 40)
	v.SetDefault("dedup.within_market_keys", []string{"commission", "logo", "name_length"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/cache.db")
	v.SetDefault("output.data_dir", "data")
	v.SetDefault("output.public_dir", "public/search-index")
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

	if cfg.FeedsFile != "" {
		feeds, err := LoadFeedsFile(cfg.FeedsFile)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = feeds
	}

	return &cfg, nil
}

// LoadFeedsFile reads feed descriptors from a standalone YAML file.
func LoadFeedsFile(path string) ([]model.FeedConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read feeds file %s", path)
	}
	var doc struct {
		Feeds []model.FeedConfig `yaml:"feeds"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(err, "config: parse feeds file %s", path)
	}
	return doc.Feeds, nil
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
