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

	"github.com/kilianp07/fleetpool/core/compliance"
	"github.com/kilianp07/fleetpool/core/factory"
	"github.com/kilianp07/fleetpool/core/metrics"
	"github.com/kilianp07/fleetpool/infra/archive"
	"github.com/kilianp07/fleetpool/infra/dataset"
	"github.com/kilianp07/fleetpool/infra/mqtt"
)

type Config struct {
	Logging    LoggingConfig        `json:"logging"`
	Dataset    dataset.Config       `json:"dataset"`
	Compliance compliance.Config    `json:"compliance"`
	Prediction factory.ModuleConfig `json:"prediction"`
	Server     ServerConfig         `json:"server"`
	Metrics    metrics.Config       `json:"metrics"`
	MQTT       mqtt.Config          `json:"mqtt"`
	Archive    archive.Config       `json:"archive"`
	Sentry     SentryConfig         `json:"sentry"`
}

// Default returns the configuration used for keys absent from the file and
// the environment.
func Default() Config {
	cfg := Config{Compliance: compliance.DefaultConfig()}
	cfg.Logging.SetDefaults()
	cfg.Server.SetDefaults()
	cfg.Sentry.SetDefaults()
	return cfg
}

// Load reads the YAML or JSON file at path, applies K_ environment overrides
// (K_COMPLIANCE__MAX_POOLS=3 sets compliance.max_pools) and validates the
// result. An empty path loads defaults and the environment only.
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
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Server.SetDefaults()
	cfg.Sentry.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Compliance.Validate(); err != nil {
		return fmt.Errorf("compliance: %w", err)
	}
	if c.Dataset.Configured() {
		if _, err := c.Dataset.DetectFormat(); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
