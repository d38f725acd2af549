package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the deployment-level configuration for the server binary.
// Environment variables seed the values; command-line flags may override them
// afterwards.
type ServerConfig struct {
	Addr           string        `env:"STOCKREPORT_ADDR" envDefault:":8080"`
	DBPath         string        `env:"STOCKREPORT_DB" envDefault:"stockreport.db"`
	MigrationsPath string        `env:"STOCKREPORT_MIGRATIONS" envDefault:"migrations"`
	VisionURL      string        `env:"STOCKREPORT_VISION_URL"`
	TuningPath     string        `env:"STOCKREPORT_TUNING"`
	WorkerInterval time.Duration `env:"STOCKREPORT_WORKER_INTERVAL" envDefault:"30s"`
	Debug          bool          `env:"STOCKREPORT_DEBUG"`
}

// LoadServerConfig reads ServerConfig from the environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Tuning resolves the tuning config named by TuningPath, falling back to the
// built-in defaults when unset.
func (c *ServerConfig) Tuning() (*TuningConfig, error) {
	if c.TuningPath == "" {
		return EmptyTuningConfig(), nil
	}
	return LoadTuningConfig(c.TuningPath)
}
