package config

import (
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Elasticsearch ElasticsearchCfg `mapstructure:"elasticsearch"`
	Ingestor      IngestorCfg      `mapstructure:"ingestor"`
	QueryServer   QueryServerCfg   `mapstructure:"queryServer"`
	Generator     GeneratorCfg     `mapstructure:"generator"`
}

type ElasticsearchCfg struct {
	Addresses     []string `mapstructure:"addresses"`
	Username      string   `mapstructure:"username"`
	Password      string   `mapstructure:"password"`
	PolicyName    string   `mapstructure:"policyName"`
	TemplateName  string   `mapstructure:"templateName"`
	RetentionDays int      `mapstructure:"retentionDays"`
}

type IngestorCfg struct {
	LogFilePath   string        `mapstructure:"logFilePath"`
	FromStart     bool          `mapstructure:"fromStart"`
	MetricsAddr   string        `mapstructure:"metricsAddr"`
	FlushInterval time.Duration `mapstructure:"flushInterval"`
}

type QueryServerCfg struct {
	ListenAddr string `mapstructure:"listenAddr"`
}

type GeneratorCfg struct {
	LogFilePath string `mapstructure:"logFilePath"`
	Days        int    `mapstructure:"days"`
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	vp.SetDefault("elasticsearch.policyName", "logs_policy")
	vp.SetDefault("elasticsearch.templateName", "logs_template")
	vp.SetDefault("elasticsearch.retentionDays", 30)
	vp.SetDefault("ingestor.logFilePath", "app.log")
	vp.SetDefault("ingestor.fromStart", false)
	vp.SetDefault("ingestor.metricsAddr", ":9102")
	vp.SetDefault("ingestor.flushInterval", 5*time.Second)
	vp.SetDefault("queryServer.listenAddr", ":8081")
	vp.SetDefault("generator.logFilePath", "app.log")
	vp.SetDefault("generator.days", 1)
}

// Load reads config.yaml from the working directory (or LOGPIPELINE_* env
// vars) and watches it for changes. A missing config file is fine; defaults
// and env cover everything.
func Load(logger *zap.Logger) (*Config, error) {
	vp := viper.New()
	vp.SetConfigName("config")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(".")
	vp.SetEnvPrefix("LOGPIPELINE")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()
	setDefaults(vp)

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		logger.Info("No config file found, using defaults and environment")
	} else {
		vp.WatchConfig()
		vp.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("Config file changed", zap.String("file", e.Name))
		})
	}

	var cfg Config
	if err := vp.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EsClient builds the go-elasticsearch client from the configured addresses
// and optional basic auth.
func (c *Config) EsClient() (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: c.Elasticsearch.Addresses,
		Username:  c.Elasticsearch.Username,
		Password:  c.Elasticsearch.Password,
	})
}
