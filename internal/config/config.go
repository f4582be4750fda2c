package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"energychart/internal/models"
)

// Config holds all configuration for the energy chart service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8981"`

	// Edge JSON-RPC connection
	EdgeURL        string        `env:"EDGE_URL,default=http://localhost:8084"`
	EdgeUsername   string        `env:"EDGE_USERNAME,default=guest"`
	EdgePassword   string        `env:"EDGE_PASSWORD"`
	EdgeTimeout    time.Duration `env:"EDGE_TIMEOUT,default=30s"`
	EdgeRetries    int           `env:"EDGE_RETRIES,default=3"`
	EdgeConfigFile string        `env:"EDGE_CONFIG_FILE"`

	// Local history store; when set it replaces the edge as data source
	HistoryDB string `env:"HISTORY_DB"`

	// Local testing configuration
	LocalReportsDir string `env:"LOCAL_REPORTS_DIR,default=./reports"`
	MockupMode      bool   `env:"MOCKUP_MODE,default=false"`
	MocksDir        string `env:"MOCKS_DIR,default=./mocks"`

	// Presentation
	DefaultLanguage string `env:"DEFAULT_LANGUAGE,default=en"`
	Timezone        string `env:"TIMEZONE,default=UTC"`

	// Report storage: "local" or "gcs"
	DeploymentMode string `env:"DEPLOYMENT_MODE,default=local"`
	GCPProjectID   string `env:"GCP_PROJECT_ID"`
	GCSBucket      string `env:"GCS_BUCKET"`

	// MQTT telemetry recorder
	MQTTBroker      string        `env:"MQTT_BROKER,default=tcp://localhost:1883"`
	MQTTTopicPrefix string        `env:"MQTT_TOPIC_PREFIX,default=edge"`
	MQTTUsername    string        `env:"MQTT_USERNAME"`
	MQTTPassword    string        `env:"MQTT_PASSWORD"`
	MQTTClientID    string        `env:"MQTT_CLIENT_ID,default=energychart-recorder"`
	RecordInterval  time.Duration `env:"RECORD_INTERVAL,default=1m"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.DeploymentMode != "local" && cfg.DeploymentMode != "gcs" {
		return nil, fmt.Errorf("unsupported deployment mode %q", cfg.DeploymentMode)
	}
	return &cfg, nil
}

// Location returns the time zone used to interpret calendar dates
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadEdgeConfig reads the role mapping of the edge things. Without a
// configured file the default single-inverter roles are used.
func (c *Config) LoadEdgeConfig() (*models.EdgeConfig, error) {
	if c.EdgeConfigFile == "" {
		return models.DefaultEdgeConfig(), nil
	}
	return LoadEdgeConfigFile(c.EdgeConfigFile)
}

// LoadEdgeConfigFile parses a YAML role mapping
func LoadEdgeConfigFile(path string) (*models.EdgeConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edge config: %w", err)
	}

	var cfg models.EdgeConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse edge config: %w", err)
	}
	if len(cfg.GridMeters) == 0 && len(cfg.ProductionMeters) == 0 && len(cfg.Storage) == 0 && len(cfg.Chargers) == 0 {
		return nil, fmt.Errorf("edge config %s defines no things", path)
	}
	return &cfg, nil
}
