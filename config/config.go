package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/taxifare/auth"
	"github.com/kilianp07/taxifare/core/metrics"
	"github.com/kilianp07/taxifare/infra/mqtt"
)

type Config struct {
	Model         ModelConfig         `json:"model"`
	HTTP          HTTPConfig          `json:"http"`
	Session       SessionConfig       `json:"session"`
	Metrics       metrics.Config      `json:"metrics"`
	PredictionLog PredictionLogConfig `json:"prediction_log"`
	MQTT          mqtt.Config         `json:"mqtt"`
	Sentry        SentryConfig        `json:"sentry"`
}

// ModelConfig locates the frozen fare model artifact and, optionally, the
// artifact store it is fetched from.
type ModelConfig struct {
	Path      string    `json:"path"`
	SourceURL string    `json:"source_url"`
	Auth      auth.Conf `json:"auth"`
}

const DefaultModelPath = "data/taxi_fare_model.yaml"

// Load reads the configuration file at path and applies K_ prefixed
// environment overrides (K_HTTP__ADDR sets http.addr). An empty path uses
// defaults and the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Model.Path == "" {
		c.Model.Path = DefaultModelPath
	}
	c.HTTP.SetDefaults()
	c.Session.SetDefaults()
	c.PredictionLog.SetDefaults()
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "taxifare"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := c.PredictionLog.Validate(); err != nil {
		return fmt.Errorf("prediction_log: %w", err)
	}
	return nil
}
