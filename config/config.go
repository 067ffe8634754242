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

	"github.com/kilianp07/metromatic/core/metrics"
	"github.com/kilianp07/metromatic/infra/mqtt"
)

type Config struct {
	Instrument metrics.Options  `json:"instrument"`
	MQTT       mqtt.Config      `json:"mqtt"`
	Prometheus PrometheusConfig `json:"prometheus"`
	Logging    LoggingConfig    `json:"logging"`
	Sentry     SentryConfig     `json:"sentry"`
}

// PrometheusConfig controls the /metrics endpoint. An empty Addr disables it.
type PrometheusConfig struct {
	Addr string `json:"addr"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
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
	// Optional environment overrides: K_MQTT__BROKER sets mqtt.broker. The
	// callback emits dotted keys, so the provider splits on ".".
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
	cfg.Logging.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. Backend configurations are only checked
// for presence here; their contents are validated when they are built.
func (c Config) Validate() error {
	if len(c.Instrument.Backends) == 0 && c.Instrument.StatsD == nil {
		return fmt.Errorf("%w: instrument: no backends configured", metrics.ErrConfig)
	}
	for i, b := range c.Instrument.Backends {
		if b.Type == "" {
			return fmt.Errorf("%w: instrument.backends[%d]: type is required", metrics.ErrConfig, i)
		}
	}
	for i, m := range c.Instrument.Metrics {
		if m.Type == "" || m.Name == "" {
			return fmt.Errorf("%w: instrument.metrics[%d]: type and name are required", metrics.ErrConfig, i)
		}
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return c.Sentry.Validate()
}
