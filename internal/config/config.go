package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Tenants maps tenant IDs to their record store endpoints.
	Tenants map[string]string `yaml:"tenants"`

	Store struct {
		TimeoutSeconds      int `yaml:"timeout_seconds"`
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"store"`

	Redis struct {
		Enabled         bool   `yaml:"enabled"`
		Address         string `yaml:"address"`
		Password        string `yaml:"password"`
		DB              int    `yaml:"db"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"redis"`

	Audit struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"audit"`

	API struct {
		Port int `yaml:"port"`
	} `yaml:"api"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if len(cfg.Tenants) == 0 {
		return nil, fmt.Errorf("config %s: at least one tenant endpoint is required", path)
	}

	if cfg.API.Port == 0 {
		cfg.API.Port = 8080
	}

	if cfg.Audit.Enabled {
		if cfg.Audit.Path == "" {
			cfg.Audit.Path = "data/audit.db"
		}
		if err = os.MkdirAll(filepath.Dir(cfg.Audit.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) StoreTimeout() time.Duration {
	if c.Store.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	if c.Store.PollIntervalSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Store.PollIntervalSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}
